package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/cart"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/checkout"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/metrics"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
)

// Workspace is the in-memory state a session works on
type Workspace struct {
	Cart     *cart.Store
	Checkout *checkout.Flow

	lastUsed time.Time
}

// Manager owns session records and the per-session workspaces
type Manager struct {
	store     Store
	orders    checkout.OrderCreator
	publisher checkout.Publisher
	opts      checkout.Options
	logger    *slog.Logger
	now       func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewManager creates a session manager. orders and publisher back every
// session's checkout flow.
func NewManager(store Store, orders checkout.OrderCreator, publisher checkout.Publisher, opts checkout.Options, logger *slog.Logger) *Manager {
	return &Manager{
		store:      store,
		orders:     orders,
		publisher:  publisher,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// Start creates an anonymous session
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	now := m.now().UTC()
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		LastSeen:  now,
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return s, nil
}

// Get loads a session and marks it as seen
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.LastSeen = m.now().UTC()
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	return s, nil
}

// Authenticate records user as signed in on session id
func (m *Manager) Authenticate(ctx context.Context, id string, user models.User, accessToken string) error {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	s.ClientID = user.ID
	s.Mail = user.Mail
	s.IsAdmin = user.IsAdmin
	s.AccessToken = accessToken
	s.LastSeen = m.now().UTC()
	return m.store.Save(ctx, s)
}

// Logout deletes the session record and tears down its workspace. A
// submission already in flight still completes against the old cart.
func (m *Manager) Logout(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	if _, ok := m.workspaces[id]; ok {
		delete(m.workspaces, id)
		metrics.ActiveWorkspaces.Dec()
	}
	m.mu.Unlock()
	return nil
}

// Workspace returns the cart and checkout flow of session id, creating them on first use
func (m *Manager) Workspace(id string) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws, ok := m.workspaces[id]
	if !ok {
		ws = &Workspace{
			Cart:     cart.New(),
			Checkout: checkout.NewFlow(m.orders, m.Resolver(id), m.publisher, m.opts),
		}
		ws.Cart.Subscribe(func(cart.Snapshot) { m.touch(id, ws) })
		m.workspaces[id] = ws
		metrics.ActiveWorkspaces.Inc()
	}
	ws.lastUsed = m.now()
	return ws
}

// touch marks ws as used when its cart changes, including the clear after a
// long checkout call
func (m *Manager) touch(id string, ws *Workspace) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.workspaces[id] == ws {
		ws.lastUsed = m.now()
	}
}

// Sweep drops workspaces unused for longer than maxIdle. Carts held by a
// submission in flight are kept. It returns the number dropped.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for id, ws := range m.workspaces {
		if ws.lastUsed.After(cutoff) || ws.Cart.Locked() {
			continue
		}
		delete(m.workspaces, id)
		dropped++
	}
	metrics.ActiveWorkspaces.Sub(float64(dropped))
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done
func (m *Manager) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(maxIdle); n > 0 {
				m.logger.Info("dropped idle carts", slog.Int("count", n))
			}
		}
	}
}

// Ping checks the session store
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

// Resolver returns a checkout.UserResolver bound to session id
func (m *Manager) Resolver(id string) checkout.UserResolver {
	return resolverFunc(func(ctx context.Context) (int64, error) {
		s, err := m.store.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return 0, ErrNotAuthenticated
			}
			return 0, err
		}
		if !s.Authenticated() {
			return 0, ErrNotAuthenticated
		}
		return s.ClientID, nil
	})
}

type resolverFunc func(ctx context.Context) (int64, error)

func (f resolverFunc) CurrentUserID(ctx context.Context) (int64, error) { return f(ctx) }
