package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	repo "github.com/launchbay/onboarding-api/internal/domain/repository"
)

// AnalyticsService aggregates waitlist, profile, badge and journey-event data
// into the funnel and time-series views behind the admin dashboard.
type AnalyticsService struct {
	Waitlist repo.WaitlistRepository
	Profiles repo.ProfileRepository
	Badges   repo.BadgeRepository
	Events   repo.EventRepository
	Stats    repo.StatsRepository

	// Now is overridable in tests.
	Now func() time.Time
}

func (s *AnalyticsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type FunnelStage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
	// Rate is the share of entrance sessions that reached this stage,
	// formatted with two decimals and a trailing percent sign. The first
	// stage is always "100.00%".
	Rate string `json:"rate"`
}

type FunnelResponse struct {
	Stages            []FunnelStage  `json:"stages"`
	OverallConversion string         `json:"overallConversion"`
	PhaseBreakdown    map[string]int `json:"phaseBreakdown"`
}

// Funnel computes the entrance -> waitlist -> profile -> badge funnel over
// an optional time range. Zero range bounds mean all time. A zero entrance
// count produces "0.00%" downstream rates rather than dividing by zero.
func (s *AnalyticsService) Funnel(ctx context.Context, from, to time.Time) (*FunnelResponse, error) {
	entrances, err := s.Events.CountDistinctSessions(ctx, entity.PhaseEntrance, entity.PhaseStart, from, to)
	if err != nil {
		return nil, err
	}
	submissions, err := s.Waitlist.CountSubmitted(ctx, from, to)
	if err != nil {
		return nil, err
	}
	profiles, err := s.Profiles.CountCompleted(ctx, from, to)
	if err != nil {
		return nil, err
	}
	badges, err := s.Badges.CountIssued(ctx, from, to)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.Events.PhaseCompletions(ctx, from, to)
	if err != nil {
		return nil, err
	}

	resp := &FunnelResponse{
		Stages: []FunnelStage{
			{Stage: "entrance", Count: entrances, Rate: "100.00%"},
			{Stage: "waitlist", Count: submissions, Rate: ratePercent(submissions, entrances)},
			{Stage: "profile_created", Count: profiles, Rate: ratePercent(profiles, entrances)},
			{Stage: "badge_issued", Count: badges, Rate: ratePercent(badges, entrances)},
		},
		OverallConversion: ratePercent(badges, entrances),
		PhaseBreakdown:    breakdown,
	}
	return resp, nil
}

// ratePercent formats part/whole as a percentage string with two decimals.
// A zero denominator yields "0.00%".
func ratePercent(part, whole int) string {
	if whole == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(part)/float64(whole)*100)
}

type DayPoint struct {
	Date        string `json:"date"`
	Signups     int    `json:"signups"`
	Invitations int    `json:"invitations"`
	Conversions int    `json:"conversions"`
}

type AnalyticsSummary struct {
	TotalSignups     int     `json:"totalSignups"`
	TotalInvited     int     `json:"totalInvited"`
	TotalConverted   int     `json:"totalConverted"`
	InviteRate            float64 `json:"inviteRate"`
	ConversionRate        float64 `json:"conversionRate"`
	OverallConversionRate float64 `json:"overallConversionRate"`
	AvgDaysToInvite       float64 `json:"avgDaysToInvite"`
	AvgDaysToConvert      float64 `json:"avgDaysToConvert"`
}

type AnalyticsResponse struct {
	Days                 int                           `json:"days"`
	Series               []DayPoint                    `json:"series"`
	Summary              AnalyticsSummary              `json:"summary"`
	InterestDistribution []repo.InterestCount          `json:"interestDistribution"`
	StatusCounts         map[entity.WaitlistStatus]int `json:"statusCounts"`
}

const (
	defaultAnalyticsDays = 30
	maxAnalyticsDays     = 365
)

// TimeSeries returns the last N UTC calendar days of waitlist activity,
// today included. Every day in range appears in the series, zero-filled when
// nothing happened.
func (s *AnalyticsService) TimeSeries(ctx context.Context, days int) (*AnalyticsResponse, error) {
	if days <= 0 {
		days = defaultAnalyticsDays
	}
	if days > maxAnalyticsDays {
		days = maxAnalyticsDays
	}

	end := utcDay(s.now()).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	signups, err := s.Waitlist.DayCounts(ctx, repo.FieldSubmitted, start, end)
	if err != nil {
		return nil, err
	}
	invites, err := s.Waitlist.DayCounts(ctx, repo.FieldInvited, start, end)
	if err != nil {
		return nil, err
	}
	conversions, err := s.Waitlist.DayCounts(ctx, repo.FieldConverted, start, end)
	if err != nil {
		return nil, err
	}

	series := make([]DayPoint, 0, days)
	signupsByDay := dayMap(signups)
	invitesByDay := dayMap(invites)
	conversionsByDay := dayMap(conversions)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		series = append(series, DayPoint{
			Date:        key,
			Signups:     signupsByDay[key],
			Invitations: invitesByDay[key],
			Conversions: conversionsByDay[key],
		})
	}

	totals, err := s.Waitlist.Totals(ctx)
	if err != nil {
		return nil, err
	}
	avgInvite, err := s.Waitlist.AvgDaysSubmitToInvite(ctx)
	if err != nil {
		return nil, err
	}
	avgConvert, err := s.Waitlist.AvgDaysInviteToConvert(ctx)
	if err != nil {
		return nil, err
	}
	interests, err := s.Waitlist.InterestCounts(ctx)
	if err != nil {
		return nil, err
	}
	statusCounts, err := s.Waitlist.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	summary := AnalyticsSummary{
		TotalSignups:     totals.Submissions,
		TotalInvited:     totals.Invited,
		TotalConverted:   totals.Converted,
		InviteRate:            round1(percent(totals.Invited, totals.Submissions)),
		ConversionRate:        round1(percent(totals.Converted, totals.Invited)),
		OverallConversionRate: round1(percent(totals.Converted, totals.Submissions)),
		AvgDaysToInvite:       round1(avgInvite),
		AvgDaysToConvert:      round1(avgConvert),
	}

	return &AnalyticsResponse{
		Days:                 days,
		Series:               series,
		Summary:              summary,
		InterestDistribution: interests,
		StatusCounts:         statusCounts,
	}, nil
}

func dayMap(counts []repo.DayCount) map[string]int {
	m := make(map[string]int, len(counts))
	for _, c := range counts {
		m[c.Day.Format("2006-01-02")] = c.Count
	}
	return m
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type DailyStatsTotals struct {
	EntranceCount      int     `json:"entranceCount"`
	WaitlistJoined     int     `json:"waitlistJoined"`
	ProfilesCreated    int     `json:"profilesCreated"`
	BadgesIssued       int     `json:"badgesIssued"`
	EntranceToWaitlist float64 `json:"entranceToWaitlist"`
	OverallConversion  float64 `json:"overallConversion"`
}

type DailyStatsRange struct {
	Days   []entity.DailyStats `json:"days"`
	Totals DailyStatsTotals    `json:"totals"`
}

const maxStatsRangeDays = 90

// DailyStats serves the per-day rollups for [start, end] at day granularity,
// end inclusive, plus aggregates over the whole range. Days without a stored
// rollup are computed on the fly and not persisted. Zero bounds default to
// the last seven days.
func (s *AnalyticsService) DailyStats(ctx context.Context, start, end time.Time) (*DailyStatsRange, error) {
	endDay := utcDay(s.now())
	if !end.IsZero() {
		endDay = utcDay(end)
	}
	startDay := endDay.AddDate(0, 0, -6)
	if !start.IsZero() {
		startDay = utcDay(start)
	}
	if startDay.After(endDay) {
		startDay = endDay
	}
	if endDay.Sub(startDay) > maxStatsRangeDays*24*time.Hour {
		startDay = endDay.AddDate(0, 0, -maxStatsRangeDays)
	}

	stored, err := s.Stats.ListRange(ctx, startDay, endDay.AddDate(0, 0, 1))
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	byDay := make(map[string]*entity.DailyStats, len(stored))
	for i := range stored {
		byDay[utcDay(stored[i].Date).Format("2006-01-02")] = &stored[i]
	}

	out := &DailyStatsRange{}
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		row := byDay[d.Format("2006-01-02")]
		if row == nil {
			computed, cErr := s.computeDaily(ctx, d)
			if cErr != nil {
				return nil, cErr
			}
			row = computed
		}
		out.Days = append(out.Days, *row)
		out.Totals.EntranceCount += row.EntranceCount
		out.Totals.WaitlistJoined += row.WaitlistJoined
		out.Totals.ProfilesCreated += row.ProfilesCreated
		out.Totals.BadgesIssued += row.BadgesIssued
	}
	if out.Totals.EntranceCount > 0 {
		out.Totals.EntranceToWaitlist = float64(out.Totals.WaitlistJoined) / float64(out.Totals.EntranceCount)
		out.Totals.OverallConversion = float64(out.Totals.BadgesIssued) / float64(out.Totals.EntranceCount)
	}
	return out, nil
}

// RecomputeDailyStats recalculates and persists the rollup for one UTC day.
func (s *AnalyticsService) RecomputeDailyStats(ctx context.Context, date time.Time) (*entity.DailyStats, error) {
	if date.IsZero() {
		date = s.now()
	}
	stats, err := s.computeDaily(ctx, utcDay(date))
	if err != nil {
		return nil, err
	}
	if err := s.Stats.Upsert(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AnalyticsService) computeDaily(ctx context.Context, day time.Time) (*entity.DailyStats, error) {
	next := day.AddDate(0, 0, 1)

	entrances, err := s.Events.CountDistinctSessions(ctx, entity.PhaseEntrance, entity.PhaseStart, day, next)
	if err != nil {
		return nil, err
	}
	joined, err := s.Waitlist.CountSubmitted(ctx, day, next)
	if err != nil {
		return nil, err
	}
	profiles, err := s.Profiles.CountCompleted(ctx, day, next)
	if err != nil {
		return nil, err
	}
	badges, err := s.Badges.CountIssued(ctx, day, next)
	if err != nil {
		return nil, err
	}

	stats := &entity.DailyStats{
		Date:            day,
		EntranceCount:   entrances,
		WaitlistJoined:  joined,
		ProfilesCreated: profiles,
		BadgesIssued:    badges,
	}
	if entrances > 0 {
		stats.EntranceToWaitlist = float64(joined) / float64(entrances)
		stats.OverallConversion = float64(badges) / float64(entrances)
	}
	return stats, nil
}
