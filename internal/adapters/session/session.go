// Package session holds the operator's bearer token and profile. A Session is
// passed explicitly to the gateway; nothing here is process-global.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"yisu_backoffice/internal/domain"
)

type Session struct {
	mu       sync.RWMutex
	token    string
	user     *domain.UserInfo
	store    domain.SessionStore
	now      func() time.Time
	onUnauth []func()
}

func New(store domain.SessionStore) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Session{store: store, now: time.Now}
}

// Restore loads a previously saved token. A missing token is not an error.
func (s *Session) Restore(ctx context.Context) error {
	tok, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.token = tok
	s.user = nil
	s.mu.Unlock()
	return nil
}

// Token returns the bearer token, or "" when absent or past its exp claim.
func (s *Session) Token() string {
	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()
	if tok == "" {
		return ""
	}
	if exp, ok := expiry(tok); ok && !exp.After(s.now()) {
		return ""
	}
	return tok
}

func (s *Session) SetToken(ctx context.Context, tok string) error {
	s.mu.Lock()
	s.token = tok
	s.user = nil
	s.mu.Unlock()
	return s.store.Save(ctx, tok)
}

func (s *Session) User() (domain.UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.UserInfo{}, false
	}
	return *s.user, true
}

func (s *Session) SetUser(u domain.UserInfo) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

// Clear drops the token and profile, in memory and in the store.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return s.store.Clear(ctx)
}

// OnUnauthorized registers fn to run whenever the backend answers 401.
func (s *Session) OnUnauthorized(fn func()) {
	s.mu.Lock()
	s.onUnauth = append(s.onUnauth, fn)
	s.mu.Unlock()
}

// Unauthorized clears credentials and runs the registered hooks.
func (s *Session) Unauthorized(ctx context.Context) {
	if err := s.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("session clear failed")
	}
	s.mu.RLock()
	hooks := append([]func(){}, s.onUnauth...)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

// ExpiresAt reports the exp claim of the current token, if it has one.
func (s *Session) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return expiry(s.token)
}

// expiry reads exp without verifying the signature; the backend verifies.
func expiry(tok string) (time.Time, bool) {
	if tok == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
