// Package store holds the gateway's client-side state: the authenticated
// session and the per-user shopping cart, both backed by the local KV store.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shopscript-storefront/internal/model"
	"shopscript-storefront/internal/storage"
)

// Fixed storage keys, shared by every gateway session the way browser tabs
// share web storage.
const (
	tokenKey = "token"
	userKey  = "user"
)

type ModalMode string

const (
	ModalLogin    ModalMode = "LOGIN"
	ModalRegister ModalMode = "REGISTER"
)

// Redirect is the navigation decision after a successful login.
type Redirect string

const (
	RedirectNone  Redirect = ""
	RedirectHome  Redirect = "/"
	RedirectAdmin Redirect = "/admin"
)

// SessionStore owns the logged-in identity and token plus the auth modal
// state. Token and user attributes are persisted separately under fixed keys.
type SessionStore struct {
	kv storage.KV

	mu        sync.RWMutex
	user      *model.User
	token     string
	modalOpen bool
	modalMode ModalMode
}

// NewSessionStore restores any persisted identity, the way a fresh tab reads
// what a previous one left behind.
func NewSessionStore(ctx context.Context, kv storage.KV) (*SessionStore, error) {
	s := &SessionStore{kv: kv, modalMode: ModalLogin}

	token, ok, err := kv.Get(ctx, tokenKey)
	if err != nil {
		return nil, fmt.Errorf("restore token: %w", err)
	}
	if !ok {
		return s, nil
	}

	raw, ok, err := kv.Get(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("restore user: %w", err)
	}
	if !ok {
		// A token without a profile is half a session; treat as logged out.
		return s, nil
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return s, nil
	}

	s.token = token
	s.user = &user
	return s, nil
}

// Login persists the payload's token and user attributes and reports where to
// navigate: admins always land on the admin view, everyone else goes home only
// when shouldRedirect is set (modal logins stay in place).
func (s *SessionStore) Login(ctx context.Context, payload *model.JwtResponse, shouldRedirect bool) (Redirect, error) {
	user := payload.User()

	raw, err := json.Marshal(user)
	if err != nil {
		return RedirectNone, fmt.Errorf("marshal user: %w", err)
	}
	if err := s.kv.Set(ctx, tokenKey, payload.Token); err != nil {
		return RedirectNone, fmt.Errorf("persist token: %w", err)
	}
	if err := s.kv.Set(ctx, userKey, string(raw)); err != nil {
		return RedirectNone, fmt.Errorf("persist user: %w", err)
	}

	s.mu.Lock()
	s.token = payload.Token
	s.user = &user
	s.modalOpen = false
	s.mu.Unlock()

	if user.Role == model.RoleAdmin {
		return RedirectAdmin, nil
	}
	if shouldRedirect {
		return RedirectHome, nil
	}
	return RedirectNone, nil
}

// Logout clears the persisted identity and token.
func (s *SessionStore) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, tokenKey); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if err := s.kv.Delete(ctx, userKey); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return nil
}

// User returns the logged-in user, or nil.
func (s *SessionStore) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *SessionStore) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *SessionStore) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Role == model.RoleAdmin
}

// Token implements client.TokenSource.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// HandleUnauthorized implements client.TokenSource: a rejected token outside
// the login flow means the session expired, so drop the persisted identity.
func (s *SessionStore) HandleUnauthorized() {
	_ = s.Logout(context.Background())
}

// TokenExpired inspects the exp claim without verifying the signature (the
// backend owns verification); it lets the UI treat a stale token as logged out
// before a round trip. A token without a readable exp claim is not expired.
func (s *SessionStore) TokenExpired(now time.Time) bool {
	token := s.Token()
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

func (s *SessionStore) OpenModal(mode ModalMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalOpen = true
	s.modalMode = mode
}

func (s *SessionStore) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalOpen = false
}

func (s *SessionStore) Modal() (open bool, mode ModalMode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modalOpen, s.modalMode
}
