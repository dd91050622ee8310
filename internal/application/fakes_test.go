package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	repo "github.com/launchbay/onboarding-api/internal/domain/repository"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User

	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if u.Email != nil {
		for _, existing := range f.users {
			if existing.Email != nil && *existing.Email == *u.Email {
				return repo.ErrDuplicate
			}
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, flt repo.UserFilter) ([]entity.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	needle := strings.ToLower(flt.Search)
	out := []entity.User{}
	for _, u := range f.users {
		if needle != "" {
			hay := ""
			if u.Email != nil {
				hay = strings.ToLower(*u.Email)
			}
			if u.Name != nil {
				hay += " " + strings.ToLower(*u.Name)
			}
			if !strings.Contains(hay, needle) {
				continue
			}
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	total := len(out)
	if flt.Offset > 0 {
		if flt.Offset >= len(out) {
			out = []entity.User{}
		} else {
			out = out[flt.Offset:]
		}
	}
	if flt.Limit > 0 && len(out) > flt.Limit {
		out = out[:flt.Limit]
	}
	return out, total, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) GetBySubject(_ context.Context, subjectID string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.SubjectID != nil && *u.SubjectID == subjectID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

type fakeWaitlistRepo struct {
	mu      sync.Mutex
	entries map[string]*entity.WaitlistEntry

	createErr error
	// emailMisses makes the next N GetByEmail calls report ErrNotFound, which
	// lets tests stage a lost unique-constraint race.
	emailMisses int
}

func newFakeWaitlistRepo() *fakeWaitlistRepo {
	return &fakeWaitlistRepo{entries: map[string]*entity.WaitlistEntry{}}
}

func (f *fakeWaitlistRepo) Create(_ context.Context, e *entity.WaitlistEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.entries {
		if existing.Email == e.Email {
			return repo.ErrDuplicate
		}
	}
	e.ID = uuid.NewString()
	e.SubmittedAt = time.Now()
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeWaitlistRepo) GetByID(_ context.Context, id string) (*entity.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeWaitlistRepo) GetByEmail(_ context.Context, email string) (*entity.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailMisses > 0 {
		f.emailMisses--
		return nil, repo.ErrNotFound
	}
	for _, e := range f.entries {
		if e.Email == email {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeWaitlistRepo) GetByUserID(_ context.Context, userID string) (*entity.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.UserID == userID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeWaitlistRepo) GetByToken(_ context.Context, token string) (*entity.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.InvitationToken != nil && *e.InvitationToken == token {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeWaitlistRepo) SetInvitation(_ context.Context, id, token string, invitedAt, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return repo.ErrNotFound
	}
	e.InvitationToken = &token
	e.InvitedAt = &invitedAt
	e.InvitationExpiresAt = &expiresAt
	return nil
}

func (f *fakeWaitlistRepo) UpdateStatus(_ context.Context, id string, status entity.WaitlistStatus, convertedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return repo.ErrNotFound
	}
	e.Status = status
	if convertedAt != nil {
		e.ConvertedAt = convertedAt
	}
	return nil
}

func (f *fakeWaitlistRepo) List(_ context.Context, filter repo.WaitlistFilter) ([]entity.WaitlistEntry, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.WaitlistEntry{}
	for _, e := range f.entries {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(e.Email, strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (f *fakeWaitlistRepo) CountByStatus(_ context.Context) (map[entity.WaitlistStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[entity.WaitlistStatus]int{}
	for _, e := range f.entries {
		m[e.Status]++
	}
	return m, nil
}

func (f *fakeWaitlistRepo) CountSubmitted(_ context.Context, start, end time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.entries {
		if inRange(e.SubmittedAt, start, end) {
			n++
		}
	}
	return n, nil
}

func (f *fakeWaitlistRepo) DayCounts(_ context.Context, field repo.TimestampField, start, end time.Time) ([]repo.DayCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byDay := map[string]int{}
	for _, e := range f.entries {
		var ts *time.Time
		switch field {
		case repo.FieldSubmitted:
			t := e.SubmittedAt
			ts = &t
		case repo.FieldInvited:
			ts = e.InvitedAt
		case repo.FieldConverted:
			ts = e.ConvertedAt
		}
		if ts == nil || !inRange(*ts, start, end) {
			continue
		}
		byDay[ts.UTC().Format("2006-01-02")]++
	}
	out := []repo.DayCount{}
	for day, n := range byDay {
		d, _ := time.Parse("2006-01-02", day)
		out = append(out, repo.DayCount{Day: d, Count: n})
	}
	return out, nil
}

func (f *fakeWaitlistRepo) Totals(_ context.Context) (repo.WaitlistTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := repo.WaitlistTotals{}
	for _, e := range f.entries {
		t.Submissions++
		if e.InvitedAt != nil {
			t.Invited++
		}
		if e.ConvertedAt != nil {
			t.Converted++
		}
	}
	return t, nil
}

func (f *fakeWaitlistRepo) AvgDaysSubmitToInvite(_ context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	var n int
	for _, e := range f.entries {
		if e.InvitedAt != nil {
			sum += e.InvitedAt.Sub(e.SubmittedAt).Hours() / 24
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func (f *fakeWaitlistRepo) AvgDaysInviteToConvert(_ context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum float64
	var n int
	for _, e := range f.entries {
		if e.InvitedAt != nil && e.ConvertedAt != nil {
			sum += e.ConvertedAt.Sub(*e.InvitedAt).Hours() / 24
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func (f *fakeWaitlistRepo) InterestCounts(_ context.Context) ([]repo.InterestCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byInterest := map[string]int{}
	for _, e := range f.entries {
		for _, i := range e.Interests {
			byInterest[i]++
		}
	}
	out := []repo.InterestCount{}
	for i, n := range byInterest {
		out = append(out, repo.InterestCount{Interest: i, Count: n})
	}
	return out, nil
}

func inRange(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && !t.Before(end) {
		return false
	}
	return true
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*entity.UserProfile // keyed by user id
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*entity.UserProfile{}}
}

func (f *fakeProfileRepo) Upsert(_ context.Context, p *entity.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.profiles[p.UserID]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		p.ID = uuid.NewString()
		p.CreatedAt = time.Now()
	}
	cp := *p
	f.profiles[p.UserID] = &cp
	return nil
}

func (f *fakeProfileRepo) GetByUserID(_ context.Context, userID string) (*entity.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeProfileRepo) CountCompleted(_ context.Context, start, end time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.profiles {
		if p.OnboardingCompleted && p.CompletedAt != nil && inRange(*p.CompletedAt, start, end) {
			n++
		}
	}
	return n, nil
}

type fakeBadgeRepo struct {
	mu     sync.Mutex
	badges map[string]*entity.Badge // keyed by user id
}

func newFakeBadgeRepo() *fakeBadgeRepo {
	return &fakeBadgeRepo{badges: map[string]*entity.Badge{}}
}

func (f *fakeBadgeRepo) Create(_ context.Context, b *entity.Badge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.badges[b.UserID]; ok {
		return repo.ErrDuplicate
	}
	b.ID = uuid.NewString()
	if b.IssuedAt.IsZero() {
		b.IssuedAt = time.Now()
	}
	cp := *b
	f.badges[b.UserID] = &cp
	return nil
}

func (f *fakeBadgeRepo) GetByUserID(_ context.Context, userID string) (*entity.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.badges[userID]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeBadgeRepo) CountIssued(_ context.Context, start, end time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.badges {
		if inRange(b.IssuedAt, start, end) {
			n++
		}
	}
	return n, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []entity.JourneyEvent
}

func newFakeEventRepo() *fakeEventRepo { return &fakeEventRepo{} }

func (f *fakeEventRepo) Create(_ context.Context, ev *entity.JourneyEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev.ID = uuid.NewString()
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakeEventRepo) CountDistinctSessions(_ context.Context, phase string, t entity.EventType, start, end time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	for _, ev := range f.events {
		if ev.Phase == phase && ev.EventType == t && inRange(ev.OccurredAt, start, end) {
			seen[ev.SessionID] = true
		}
	}
	return len(seen), nil
}

func (f *fakeEventRepo) PhaseCompletions(_ context.Context, start, end time.Time) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]int{}
	for _, ev := range f.events {
		if ev.EventType == entity.PhaseComplete && inRange(ev.OccurredAt, start, end) {
			m[ev.Phase]++
		}
	}
	return m, nil
}

type fakeStatsRepo struct {
	mu    sync.Mutex
	stats map[string]*entity.DailyStats // keyed by date string
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{stats: map[string]*entity.DailyStats{}}
}

func (f *fakeStatsRepo) Upsert(_ context.Context, s *entity.DailyStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := s.Date.Format("2006-01-02")
	if existing, ok := f.stats[key]; ok {
		s.ID = existing.ID
	} else {
		s.ID = uuid.NewString()
	}
	s.UpdatedAt = time.Now()
	cp := *s
	f.stats[key] = &cp
	return nil
}

func (f *fakeStatsRepo) ListRange(_ context.Context, start, end time.Time) ([]entity.DailyStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.DailyStats{}
	for _, s := range f.stats {
		if inRange(s.Date, start, end) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*entity.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: map[string]*entity.Admin{}}
}

func (f *fakeAdminRepo) Create(_ context.Context, a *entity.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.admins {
		if existing.Email == a.Email {
			return repo.ErrDuplicate
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	cp := *a
	f.admins[a.ID] = &cp
	return nil
}

func (f *fakeAdminRepo) GetByID(_ context.Context, id string) (*entity.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.admins[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*entity.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

// fakeSender records outbound emails and can be told to fail.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentEmail
	failErr error
}

type sentEmail struct {
	To      string
	Subject string
	HTML    string
}

func (f *fakeSender) Send(_ context.Context, to, subject, _, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakeLimiter is a deterministic submission limiter.
type fakeLimiter struct {
	blocked  map[string]bool
	recorded []string
}

func newFakeLimiter() *fakeLimiter { return &fakeLimiter{blocked: map[string]bool{}} }

func (f *fakeLimiter) Blocked(_ context.Context, key string) bool { return f.blocked[key] }
func (f *fakeLimiter) Record(_ context.Context, key string)       { f.recorded = append(f.recorded, key) }

var errBoom = fmt.Errorf("boom")
