package entity

import "time"

// UserProfile is the outcome of the onboarding quiz: one categorical pattern
// per protocol dimension plus the raw question/answer responses.
type UserProfile struct {
	ID     string
	UserID string

	KnowledgePattern  string
	ThesisPattern     string
	PrioritizePattern string
	ActionPattern     string
	NavigationPattern string

	DisplayName *string
	Responses   []byte // raw responses, stored as jsonb

	OnboardingCompleted bool
	CompletedAt         *time.Time
	CreatedAt           time.Time
}
