// Package ui manages gateway UI sessions. Each session is the analog of one
// browser tab: its own backend client, session and cart stores, checkout flow,
// admin form and notification list. Sessions share the local KV store
// last-writer-wins, exactly like tabs sharing web storage.
package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopscript-storefront/internal/admin"
	"shopscript-storefront/internal/checkout"
	"shopscript-storefront/internal/client"
	"shopscript-storefront/internal/config"
	"shopscript-storefront/internal/model"
	"shopscript-storefront/internal/notify"
	"shopscript-storefront/internal/storage"
	"shopscript-storefront/internal/store"
)

// ContextKey is where the session middleware stashes the *Session on the echo
// context.
const ContextKey = "ui_session"

type Session struct {
	ID          string
	Client      client.ShopClient
	Auth        *store.SessionStore
	Cart        *store.CartStore
	Checkout    *checkout.Flow
	ProductForm *admin.ProductForm
	Notices     *notify.Center
}

// Token implements client.TokenSource.
func (s *Session) Token() string {
	return s.Auth.Token()
}

// HandleUnauthorized implements client.TokenSource: an expired session drops
// the persisted identity and returns the cart to guest state without touching
// the user's saved snapshot.
func (s *Session) HandleUnauthorized() {
	s.Auth.HandleUnauthorized()
	s.Cart.Deactivate()
}

// Login records the payload and switches the cart to the user's persisted
// snapshot, so the visible cart swaps with the identity.
func (s *Session) Login(ctx context.Context, payload *model.JwtResponse, shouldRedirect bool) (store.Redirect, error) {
	redirect, err := s.Auth.Login(ctx, payload, shouldRedirect)
	if err != nil {
		return store.RedirectNone, err
	}
	if err := s.Cart.SetUser(ctx, payload.ID); err != nil {
		return redirect, err
	}
	return redirect, nil
}

// Logout clears the persisted identity and empties the visible cart. The
// user's saved cart snapshot survives for their next login.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.Auth.Logout(ctx); err != nil {
		return err
	}
	s.Cart.Deactivate()
	s.Checkout.Reset()
	return nil
}

// Manager creates and tracks UI sessions by cookie id.
type Manager struct {
	backendCfg *config.Backend
	kv         storage.KV

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(backendCfg *config.Backend, kv storage.KV) *Manager {
	return &Manager{
		backendCfg: backendCfg,
		kv:         kv,
		sessions:   map[string]*Session{},
	}
}

// Get returns the session for sid, creating one (with a fresh id when sid is
// empty or unknown) that restores whatever identity the KV store holds.
func (m *Manager) Get(ctx context.Context, sid string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[sid]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s, err := m.newSession(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

func (m *Manager) newSession(ctx context.Context) (*Session, error) {
	auth, err := store.NewSessionStore(ctx, m.kv)
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}

	s := &Session{
		ID:          uuid.NewString(),
		Auth:        auth,
		Cart:        store.NewCartStore(m.kv),
		Checkout:    checkout.NewFlow(),
		ProductForm: admin.NewProductForm(),
		Notices:     notify.NewCenter(),
	}
	s.Client = client.NewShopClient(m.backendCfg, s)

	// A restored identity with a stale token is dropped up front rather than
	// bounced by the first backend call.
	if auth.TokenExpired(time.Now()) {
		_ = auth.Logout(ctx)
	}
	if user := auth.User(); user != nil {
		if err := s.Cart.SetUser(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("restore cart: %w", err)
		}
	}
	return s, nil
}
