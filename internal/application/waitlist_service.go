package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	repo "github.com/launchbay/onboarding-api/internal/domain/repository"
	"github.com/launchbay/onboarding-api/pkg/helpers"
	"github.com/launchbay/onboarding-api/pkg/mailer"
	"github.com/launchbay/onboarding-api/pkg/mailer/templates"
	"github.com/launchbay/onboarding-api/pkg/ratelimit"
)

// WaitlistService handles public waitlist registration and invitation-backed
// conversion. Publisher and ES are optional; when nil the corresponding side
// effects are skipped.
type WaitlistService struct {
	Users     repo.UserRepository
	Waitlist  repo.WaitlistRepository
	Limiter   ratelimit.Limiter
	Publisher *helpers.RabbitPublisher
	ES        *elasticsearch.Client
	ESIndex   string
	Logger    *logrus.Logger

	// NotifyEmail receives an internal notification for each new registration.
	NotifyEmail string
}

type RegisterInput struct {
	Name      string
	Email     string
	Company   string
	Interests []string
}

type RegisterResult struct {
	Entry             *entity.WaitlistEntry
	AlreadyRegistered bool
}

// Register submits an email to the waitlist. Resubmitting a registered email
// succeeds without creating anything; resubmitting inside the rate-limit
// window fails with ErrRateLimited.
func (s *WaitlistService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)

	if s.Limiter != nil && s.Limiter.Blocked(ctx, email) {
		return nil, ErrRateLimited
	}

	if existing, err := s.Waitlist.GetByEmail(ctx, email); err == nil {
		if s.Limiter != nil {
			s.Limiter.Record(ctx, email)
		}
		return &RegisterResult{Entry: existing, AlreadyRegistered: true}, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	user, err := s.findOrCreateUser(ctx, email, name)
	if err != nil {
		return nil, err
	}

	entry := &entity.WaitlistEntry{
		UserID:    user.ID,
		Name:      name,
		Email:     email,
		Interests: in.Interests,
		Status:    entity.WaitlistActive,
	}
	if c := strings.TrimSpace(in.Company); c != "" {
		entry.Company = &c
	}
	if entry.Interests == nil {
		entry.Interests = []string{}
	}

	if err := s.Waitlist.Create(ctx, entry); err != nil {
		// Concurrent submission won the unique race; treat ours as a resubmit.
		if errors.Is(err, repo.ErrDuplicate) {
			existing, gerr := s.Waitlist.GetByEmail(ctx, email)
			if gerr != nil {
				return nil, gerr
			}
			if s.Limiter != nil {
				s.Limiter.Record(ctx, email)
			}
			return &RegisterResult{Entry: existing, AlreadyRegistered: true}, nil
		}
		return nil, err
	}

	if s.Limiter != nil {
		s.Limiter.Record(ctx, email)
	}
	s.enqueueNotification(ctx, entry)
	s.indexEntry(ctx, entry)

	return &RegisterResult{Entry: entry}, nil
}

func (s *WaitlistService) findOrCreateUser(ctx context.Context, email, name string) (*entity.User, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	user = &entity.User{Email: &email, Name: &name}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return s.Users.GetByEmail(ctx, email)
		}
		return nil, err
	}
	return user, nil
}

// enqueueNotification hands the internal "new registration" email to the
// worker queue. Best effort: a broker outage never fails the registration.
func (s *WaitlistService) enqueueNotification(ctx context.Context, e *entity.WaitlistEntry) {
	if s.Publisher == nil || s.NotifyEmail == "" {
		return
	}
	data := map[string]any{
		"Name":  e.Name,
		"Email": e.Email,
	}
	if e.Company != nil {
		data["Company"] = *e.Company
	}
	if len(e.Interests) > 0 {
		data["Interests"] = strings.Join(e.Interests, ", ")
	}
	job := mailer.EmailJob{
		To:       s.NotifyEmail,
		Template: templates.RegistrationReceived,
		Data:     data,
	}
	if err := s.Publisher.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", e.Email).Warn("notification enqueue failed")
	}
}

func (s *WaitlistService) indexEntry(ctx context.Context, e *entity.WaitlistEntry) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":           e.ID,
		"email":        e.Email,
		"name":         e.Name,
		"status":       e.Status,
		"interests":    e.Interests,
		"submitted_at": e.SubmittedAt.Format(time.RFC3339Nano),
	}
	if e.Company != nil {
		doc["company"] = *e.Company
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: e.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("entry_id", e.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("entry_id", e.ID).Warn("es index response error")
	}
}
