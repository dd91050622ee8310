package entity

import (
	"strings"
	"time"
)

// Badge is the cosmetic credential issued at the end of onboarding.
type Badge struct {
	ID           string
	UserID       string
	SerialNumber string
	DisplayName  *string
	IssuedAt     time.Time
}

// BadgeSerial derives a serial number from the trailing characters of a user
// id, upper-cased.
func BadgeSerial(userID string) string {
	s := userID
	if len(s) > 8 {
		s = s[len(s)-8:]
	}
	return strings.ToUpper(s)
}
