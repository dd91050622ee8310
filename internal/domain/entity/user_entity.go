package entity

import "time"

// User is the identity anchor for the onboarding flow. A user may start out
// anonymous (no email, no external identity) and pick up attributes later,
// either from a waitlist submission or from the identity provider callback.
//
// Email and SubjectID are pointers because both columns are nullable and
// unique; an empty string would collide across anonymous users.
type User struct {
	ID            string
	Email         *string
	Name          *string
	SubjectID     *string // external identity provider subject
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
