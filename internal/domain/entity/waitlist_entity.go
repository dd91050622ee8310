package entity

import "time"

// WaitlistStatus is the lifecycle state of a waitlist entry.
type WaitlistStatus string

const (
	WaitlistActive    WaitlistStatus = "ACTIVE"
	WaitlistConverted WaitlistStatus = "CONVERTED"
	WaitlistInactive  WaitlistStatus = "INACTIVE"
)

// Valid reports whether s is one of the known statuses.
func (s WaitlistStatus) Valid() bool {
	switch s {
	case WaitlistActive, WaitlistConverted, WaitlistInactive:
		return true
	}
	return false
}

// WaitlistEntry is a pending registration. Email is unique and stored
// lower-cased. The invitation token, once issued, is unique across all
// entries and carries a fixed validity window from issuance; reissuing
// overwrites the previous token, which stops verifying immediately.
type WaitlistEntry struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	Company   *string
	Interests []string
	Status    WaitlistStatus

	SubmittedAt         time.Time
	InvitationToken     *string
	InvitedAt           *time.Time
	InvitationExpiresAt *time.Time
	ConvertedAt         *time.Time
}

// Invited reports whether an invitation has ever been issued for the entry.
func (e *WaitlistEntry) Invited() bool { return e.InvitedAt != nil }
