package application

import "errors"

var (
	ErrRateLimited        = errors.New("submission window active for this email")
	ErrNotFound           = errors.New("record not found")
	ErrAlreadyConverted   = errors.New("waitlist entry already converted")
	ErrInvalidToken       = errors.New("invitation token not recognized")
	ErrInvitationExpired  = errors.New("invitation token expired")
	ErrInvitationUsed     = errors.New("invitation token already used")
	ErrEmailUnavailable   = errors.New("email delivery not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
)
