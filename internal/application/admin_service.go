package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	repo "github.com/launchbay/onboarding-api/internal/domain/repository"
	"github.com/launchbay/onboarding-api/pkg/helpers"
)

// AdminService covers dashboard authentication, waitlist management and the
// user directory.
type AdminService struct {
	Admins   repo.AdminRepository
	Users    repo.UserRepository
	Waitlist repo.WaitlistRepository
	Profiles repo.ProfileRepository
	Badges   repo.BadgeRepository
	JWT      *helpers.JWTManager
	Redis    *redis.Client
	Logger   *logrus.Logger
	ES       *elasticsearch.Client
	ESIndex  string
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func sessionKey(adminID string) string {
	return "admin:session:" + adminID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (s *AdminService) Login(ctx context.Context, email, password string) (*entity.Admin, TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	admin, err := s.Admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if !helpers.CompareHashAndPassword(admin.PasswordHash, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, admin)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return admin, pair, nil
}

func (s *AdminService) issueTokens(ctx context.Context, admin *entity.Admin) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(admin.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("admin_id", admin.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(admin.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("admin_id", admin.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(admin.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"admin_id":   admin.ID,
			"email":      admin.Email,
			"role":       string(admin.Role),
			"sid":        sid,
			"created_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, s.JWT.RefreshTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session id and both tokens. The refresh token's sid
// must still match the stored session.
func (s *AdminService) Refresh(ctx context.Context, refreshToken string) (*entity.Admin, TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	admin, err := s.Admins.GetByID(ctx, claims.AdminID)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, sessionKey(admin.ID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return nil, TokenPair{}, ErrSessionExpired
		}
	}

	pair, err := s.issueTokens(ctx, admin)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return admin, pair, nil
}

func (s *AdminService) Logout(ctx context.Context, adminID string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(ctx, sessionKey(adminID)).Err()
}

// ValidateSession checks that an access token's session is still live and
// returns the admin it belongs to.
func (s *AdminService) ValidateSession(ctx context.Context, claims *helpers.Claims) (*entity.Admin, error) {
	if s.Redis != nil {
		data, err := s.Redis.HGetAll(ctx, sessionKey(claims.AdminID)).Result()
		if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return nil, ErrSessionExpired
		}
	}
	admin, err := s.Admins.GetByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) ListWaitlist(ctx context.Context, f repo.WaitlistFilter) ([]entity.WaitlistEntry, int, error) {
	return s.Waitlist.List(ctx, f)
}

// UpdateWaitlistStatus moves an entry between ACTIVE, CONVERTED and INACTIVE.
// A manual move to CONVERTED stamps the conversion time.
func (s *AdminService) UpdateWaitlistStatus(ctx context.Context, id string, status entity.WaitlistStatus) (*entity.WaitlistEntry, error) {
	if !status.Valid() {
		return nil, errors.New("unknown waitlist status")
	}

	var convertedAt *time.Time
	if status == entity.WaitlistConverted {
		now := time.Now()
		convertedAt = &now
	}
	if err := s.Waitlist.UpdateStatus(ctx, id, status, convertedAt); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	entry, err := s.Waitlist.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AdminUserRow is one user in the dashboard directory, with the onboarding
// relations the list view shows.
type AdminUserRow struct {
	User     entity.User           `json:"user"`
	Profile  *entity.UserProfile   `json:"profile,omitempty"`
	Badge    *entity.Badge         `json:"badge,omitempty"`
	Waitlist *entity.WaitlistEntry `json:"waitlist,omitempty"`
}

// ListUsers returns a page of users with their profile, badge and waitlist
// relations attached. Missing relations stay nil.
func (s *AdminService) ListUsers(ctx context.Context, f repo.UserFilter) ([]AdminUserRow, int, error) {
	users, total, err := s.Users.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]AdminUserRow, 0, len(users))
	for i := range users {
		row := AdminUserRow{User: users[i]}
		if p, pErr := s.Profiles.GetByUserID(ctx, users[i].ID); pErr == nil {
			row.Profile = p
		}
		if b, bErr := s.Badges.GetByUserID(ctx, users[i].ID); bErr == nil {
			row.Badge = b
		}
		if w, wErr := s.Waitlist.GetByUserID(ctx, users[i].ID); wErr == nil {
			row.Waitlist = w
		}
		rows = append(rows, row)
	}
	return rows, total, nil
}

// SearchWaitlist performs a free-text search over the waitlist index. When
// Elasticsearch is not configured it falls back to the database filter.
func (s *AdminService) SearchWaitlist(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	if s.ES == nil || s.ESIndex == "" {
		entries, _, err := s.Waitlist.List(ctx, repo.WaitlistFilter{Search: q, Limit: size})
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(entries))
		for _, e := range entries {
			doc := map[string]any{
				"id":     e.ID,
				"email":  e.Email,
				"name":   e.Name,
				"status": e.Status,
			}
			if e.Company != nil {
				doc["company"] = *e.Company
			}
			out = append(out, doc)
		}
		return out, nil
	}

	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name", "company"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
