package session

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Keys persisted for an authenticated session. Their presence gates every
// authenticated operation; Clear removes all of them atomically.
const (
	KeyToken    = "token"
	KeyUsername = "username"
	KeyRole     = "role"
	KeyGithub   = "github"
	KeyLinkedin = "linkedin"
	KeyAvatar   = "avatar"
)

// Store abstracts the session-scoped key/value storage holding client auth
// state. Implementations must make Clear atomic with respect to Set/Get.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
	Snapshot(ctx context.Context) (map[string]string, error)
}

// Login persists the fields returned by the auth endpoints in one pass.
type Login struct {
	Token    string
	Username string
	Role     string
	Github   string
	Linkedin string
	Avatar   string
}

// SaveLogin writes the login fields; empty optional fields are skipped.
func SaveLogin(ctx context.Context, store Store, login Login) error {
	pairs := map[string]string{
		KeyToken:    login.Token,
		KeyUsername: login.Username,
		KeyRole:     login.Role,
		KeyGithub:   login.Github,
		KeyLinkedin: login.Linkedin,
		KeyAvatar:   login.Avatar,
	}
	for key, value := range pairs {
		if value == "" && key != KeyToken {
			continue
		}
		if err := store.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Session is a read-only view over a Store.
type Session struct {
	store Store
	now   func() time.Time
}

func NewSession(store Store) *Session {
	return &Session{store: store, now: time.Now}
}

func (s *Session) Token(ctx context.Context) string {
	return s.value(ctx, KeyToken)
}

func (s *Session) Username(ctx context.Context) string {
	return s.value(ctx, KeyUsername)
}

func (s *Session) Role(ctx context.Context) string {
	return s.value(ctx, KeyRole)
}

func (s *Session) IsAdmin(ctx context.Context) bool {
	return strings.EqualFold(s.Role(ctx), "admin")
}

// Authenticated reports whether a usable token is present. A token whose
// exp claim is already in the past counts as absent.
func (s *Session) Authenticated(ctx context.Context) bool {
	token := s.Token(ctx)
	if token == "" {
		return false
	}
	expiry, ok := tokenExpiry(token)
	if !ok {
		// Opaque tokens are trusted until the backend rejects them.
		return true
	}
	return expiry.After(s.now())
}

func (s *Session) value(ctx context.Context, key string) string {
	if s == nil || s.store == nil {
		return ""
	}
	val, err := s.store.Get(ctx, key)
	if err != nil {
		return ""
	}
	return val
}

// tokenExpiry decodes the exp claim without verifying the signature; the
// client holds no signing secret, verification is the backend's job.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}
	return expiry.Time, true
}
