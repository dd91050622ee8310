package entity

import "time"

// EventType classifies a journey event.
type EventType string

const (
	PhaseStart    EventType = "PHASE_START"
	PhaseComplete EventType = "PHASE_COMPLETE"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	return t == PhaseStart || t == PhaseComplete
}

// Well-known phase labels. Phase is free-form on the wire; these are the
// labels the funnel and daily stats key off.
const (
	PhaseEntrance = "entrance"
	PhaseWaitlist = "waitlist"
	PhaseWelcome  = "welcome"
)

// JourneyEvent is an analytics marker for a visitor entering or completing a
// named phase of the flow. UserID is optional; anonymous visitors are tracked
// by session only.
type JourneyEvent struct {
	ID         string
	UserID     *string
	SessionID  string
	EventType  EventType
	Phase      string
	OccurredAt time.Time
	DurationMS *int64
}
