package repository

import (
	"context"
	"time"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
)

// EventRepository persists journey events and answers the event-derived
// analytics queries. Range arguments with a zero time are unbounded.
type EventRepository interface {
	Create(ctx context.Context, ev *entity.JourneyEvent) error

	// CountDistinctSessions counts unique sessions that recorded the given
	// phase/type pair in range. Used for the funnel's entrance stage.
	CountDistinctSessions(ctx context.Context, phase string, t entity.EventType, start, end time.Time) (int, error)

	// PhaseCompletions groups PHASE_COMPLETE events by phase name in range.
	PhaseCompletions(ctx context.Context, start, end time.Time) (map[string]int, error)
}
