package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	repo "github.com/launchbay/onboarding-api/internal/domain/repository"
	"github.com/launchbay/onboarding-api/pkg/helpers"
	"github.com/launchbay/onboarding-api/pkg/mailer"
	"github.com/launchbay/onboarding-api/pkg/mailer/templates"
)

// InvitationTTL is how long an issued invitation token stays redeemable.
const InvitationTTL = 7 * 24 * time.Hour

// InvitationService issues, verifies and redeems invitation tokens. Issuing
// persists the token before sending the email, so a delivery failure leaves a
// valid token behind for a later resend.
type InvitationService struct {
	Users    repo.UserRepository
	Waitlist repo.WaitlistRepository
	Mailer   mailer.Sender
	Logger   *logrus.Logger

	AppName string
	BaseURL string

	// PacingDelay is the pause between sends in IssueBulk.
	PacingDelay time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

func (s *InvitationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type IssueResult struct {
	Entry     *entity.WaitlistEntry
	Token     string
	ExpiresAt time.Time
}

// Issue generates a fresh token for the entry registered under the email,
// replacing any previous one, and mails the invitation link. Converted
// entries cannot be re-invited.
func (s *InvitationService) Issue(ctx context.Context, email string) (*IssueResult, error) {
	if s.Mailer == nil {
		return nil, ErrEmailUnavailable
	}

	email = strings.ToLower(strings.TrimSpace(email))
	entry, err := s.Waitlist.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if entry.Status == entity.WaitlistConverted {
		return nil, ErrAlreadyConverted
	}

	token, err := helpers.NewInvitationToken()
	if err != nil {
		return nil, fmt.Errorf("generate invitation token: %w", err)
	}

	invitedAt := s.now()
	expiresAt := invitedAt.Add(InvitationTTL)
	if err := s.Waitlist.SetInvitation(ctx, entry.ID, token, invitedAt, expiresAt); err != nil {
		return nil, err
	}
	entry.InvitationToken = &token
	entry.InvitedAt = &invitedAt
	entry.InvitationExpiresAt = &expiresAt

	if err := s.sendInvitation(ctx, entry, token, expiresAt); err != nil {
		// Token is already persisted; a resend can reuse or replace it.
		return nil, fmt.Errorf("send invitation email: %w", err)
	}

	return &IssueResult{Entry: entry, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *InvitationService) sendInvitation(ctx context.Context, e *entity.WaitlistEntry, token string, expiresAt time.Time) error {
	data := map[string]any{
		"AppName":       s.AppName,
		"Name":          e.Name,
		"CodePreview":   token[:8],
		"InvitationURL": fmt.Sprintf("%s/invitation?token=%s", strings.TrimRight(s.BaseURL, "/"), token),
		"ExpiresAtText": expiresAt.UTC().Format("January 2, 2006 15:04 MST"),
	}
	html, err := templates.RenderHTML(templates.Invitation, data)
	if err != nil {
		return err
	}
	return s.Mailer.Send(ctx, e.Email, templates.SubjectFor(templates.Invitation, data), "", html)
}

// Verify checks a token without consuming it. It distinguishes unknown,
// expired and already-used tokens so the caller can tell the visitor which
// case they hit.
func (s *InvitationService) Verify(ctx context.Context, token string) (*entity.WaitlistEntry, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	entry, err := s.Waitlist.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if entry.InvitationExpiresAt != nil && !s.now().Before(*entry.InvitationExpiresAt) {
		return nil, ErrInvitationExpired
	}
	if entry.Status == entity.WaitlistConverted {
		return nil, ErrInvitationUsed
	}
	return entry, nil
}

type ConvertInput struct {
	Token     string
	SubjectID string
	Email     string
	Name      string
}

// Convert redeems a valid token: the entry becomes CONVERTED and the
// identity-provider subject is linked onto the user record.
func (s *InvitationService) Convert(ctx context.Context, in ConvertInput) (*entity.WaitlistEntry, error) {
	entry, err := s.Verify(ctx, in.Token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.Waitlist.UpdateStatus(ctx, entry.ID, entity.WaitlistConverted, &now); err != nil {
		return nil, err
	}
	entry.Status = entity.WaitlistConverted
	entry.ConvertedAt = &now

	user, err := s.Users.GetByID(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}
	if in.SubjectID != "" {
		// subject_id is unique; never steal a subject already linked to
		// another account.
		owner, err := s.Users.GetBySubject(ctx, in.SubjectID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		if owner == nil || owner.ID == user.ID {
			user.SubjectID = &in.SubjectID
		}
	}
	if in.Email != "" {
		email := strings.ToLower(strings.TrimSpace(in.Email))
		user.Email = &email
	}
	if in.Name != "" {
		name := in.Name
		user.Name = &name
	}
	user.EmailVerified = true
	if err := s.Users.Update(ctx, user); err != nil {
		return nil, err
	}

	return entry, nil
}

type BulkItemResult struct {
	Email   string `json:"email"`
	EntryID string `json:"entryId,omitempty"`
	Sent    bool   `json:"sent"`
	Error   string `json:"error,omitempty"`
}

type BulkResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Results   []BulkItemResult `json:"results"`
}

// IssueBulk invites the selected emails one at a time, pausing between sends
// so the mail provider is not hammered. One failure never stops the rest of
// the batch.
func (s *InvitationService) IssueBulk(ctx context.Context, emails []string) (*BulkResult, error) {
	out := &BulkResult{Results: make([]BulkItemResult, 0, len(emails))}

	for i, email := range emails {
		if i > 0 && s.PacingDelay > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(s.PacingDelay):
			}
		}

		item := BulkItemResult{Email: email}
		res, err := s.Issue(ctx, email)
		if err != nil {
			item.Error = err.Error()
			out.Failed++
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("email", email).Warn("bulk invite item failed")
			}
		} else {
			item.EntryID = res.Entry.ID
			item.Sent = true
			out.Succeeded++
		}
		out.Results = append(out.Results, item)
	}
	return out, nil
}
