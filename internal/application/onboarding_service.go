package application

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	repo "github.com/launchbay/onboarding-api/internal/domain/repository"
)

// OnboardingService backs the anonymous visitor journey: user bootstrap,
// quiz profile, badge issuance and journey events.
type OnboardingService struct {
	Users    repo.UserRepository
	Waitlist repo.WaitlistRepository
	Profiles repo.ProfileRepository
	Badges   repo.BadgeRepository
	Events   repo.EventRepository
}

// AnonymousUser creates an empty user record and returns it. Visitors get
// one before any identifying information exists.
func (s *OnboardingService) AnonymousUser(ctx context.Context) (*entity.User, error) {
	user := &entity.User{}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type ProfileInput struct {
	UserID            string
	KnowledgePattern  string
	ThesisPattern     string
	PrioritizePattern string
	ActionPattern     string
	NavigationPattern string
	DisplayName       string
	Responses         json.RawMessage
}

// SaveProfile stores the quiz outcome for a user, replacing any previous
// profile. Saving marks onboarding as completed.
func (s *OnboardingService) SaveProfile(ctx context.Context, in ProfileInput) (*entity.UserProfile, error) {
	if _, err := s.Users.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	p := &entity.UserProfile{
		UserID:              in.UserID,
		KnowledgePattern:    in.KnowledgePattern,
		ThesisPattern:       in.ThesisPattern,
		PrioritizePattern:   in.PrioritizePattern,
		ActionPattern:       in.ActionPattern,
		NavigationPattern:   in.NavigationPattern,
		Responses:           in.Responses,
		OnboardingCompleted: true,
		CompletedAt:         &now,
	}
	if in.DisplayName != "" {
		p.DisplayName = &in.DisplayName
	}
	if p.Responses == nil {
		p.Responses = json.RawMessage(`{}`)
	}
	if err := s.Profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// IssueBadge mints the user's badge. A second call returns the existing
// badge unchanged, the serial included.
func (s *OnboardingService) IssueBadge(ctx context.Context, userID, displayName string) (*entity.Badge, error) {
	if existing, err := s.Badges.GetByUserID(ctx, userID); err == nil {
		return existing, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	b := &entity.Badge{
		UserID:       userID,
		SerialNumber: entity.BadgeSerial(userID),
	}
	if displayName != "" {
		b.DisplayName = &displayName
	}
	if err := s.Badges.Create(ctx, b); err != nil {
		// Lost a concurrent issue race; the first badge wins.
		if errors.Is(err, repo.ErrDuplicate) {
			return s.Badges.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	return b, nil
}

func (s *OnboardingService) GetBadge(ctx context.Context, userID string) (*entity.Badge, error) {
	b, err := s.Badges.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// UserInfo is the composite view the frontend polls after conversion.
type UserInfo struct {
	User     *entity.User          `json:"user"`
	Profile  *entity.UserProfile   `json:"profile,omitempty"`
	Badge    *entity.Badge         `json:"badge,omitempty"`
	Waitlist *entity.WaitlistEntry `json:"waitlist,omitempty"`
}

func (s *OnboardingService) UserInfo(ctx context.Context, userID string) (*UserInfo, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	info := &UserInfo{User: user}
	if p, err := s.Profiles.GetByUserID(ctx, userID); err == nil {
		info.Profile = p
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if b, err := s.Badges.GetByUserID(ctx, userID); err == nil {
		info.Badge = b
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if w, err := s.Waitlist.GetByUserID(ctx, userID); err == nil {
		info.Waitlist = w
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	return info, nil
}

type EventInput struct {
	UserID     string
	SessionID  string
	EventType  entity.EventType
	Phase      string
	DurationMS *int64
}

// RecordEvent appends one journey event. Unknown event types are rejected
// before touching storage.
func (s *OnboardingService) RecordEvent(ctx context.Context, in EventInput) (*entity.JourneyEvent, error) {
	if !in.EventType.Valid() {
		return nil, errors.New("unknown event type")
	}

	ev := &entity.JourneyEvent{
		SessionID:  in.SessionID,
		EventType:  in.EventType,
		Phase:      in.Phase,
		DurationMS: in.DurationMS,
	}
	if in.UserID != "" {
		uid := in.UserID
		ev.UserID = &uid
	}
	if err := s.Events.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}
