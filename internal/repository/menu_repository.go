package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/metrics"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
)

var (
	ErrDishNotFound = errors.New("dish not found")
)

// MenuSource loads the raw menu tables
type MenuSource interface {
	Dishes(ctx context.Context) ([]models.Dish, error)
	Prices(ctx context.Context) ([]models.Price, error)
}

// Menu is one consistent load of dishes and prices
type Menu struct {
	Dishes    []models.Dish
	Prices    []models.Price
	FetchedAt time.Time
}

// MenuRepository defines the interface for menu data access
type MenuRepository interface {
	Menu(ctx context.Context) (*Menu, error)
	Invalidate()
}

// CachedMenuRepository keeps the menu in memory for a TTL. Concurrent
// refreshes share one backend round trip.
type CachedMenuRepository struct {
	source MenuSource
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	group singleflight.Group

	mu         sync.RWMutex
	cached     *Menu
	generation uint64
}

// NewCachedMenuRepository creates a menu repository over source
func NewCachedMenuRepository(source MenuSource, ttl time.Duration, logger *slog.Logger) *CachedMenuRepository {
	return &CachedMenuRepository{
		source: source,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Menu returns the cached menu, refreshing it when older than the TTL. If a
// refresh fails and an older copy exists, the older copy is returned.
func (r *CachedMenuRepository) Menu(ctx context.Context) (*Menu, error) {
	r.mu.RLock()
	cached, gen := r.cached, r.generation
	r.mu.RUnlock()

	if cached != nil && r.now().Sub(cached.FetchedAt) < r.ttl {
		return cached, nil
	}

	// Callers share the flight, so the first caller going away must not cancel it.
	v, err, _ := r.group.Do("menu", func() (any, error) {
		return r.fetch(context.WithoutCancel(ctx), gen)
	})
	if err != nil {
		metrics.MenuCacheRefreshes.WithLabelValues("error").Inc()
		if cached != nil {
			r.logger.WarnContext(ctx, "menu refresh failed, serving stale copy",
				slog.Time("fetched_at", cached.FetchedAt),
				slog.String("error", err.Error()),
			)
			return cached, nil
		}
		return nil, err
	}
	return v.(*Menu), nil
}

func (r *CachedMenuRepository) fetch(ctx context.Context, gen uint64) (*Menu, error) {
	var (
		dishes []models.Dish
		prices []models.Price
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dishes, err = r.source.Dishes(gctx)
		if err != nil {
			return fmt.Errorf("load dishes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		prices, err = r.source.Prices(gctx)
		if err != nil {
			return fmt.Errorf("load prices: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	menu := &Menu{Dishes: dishes, Prices: prices, FetchedAt: r.now()}

	r.mu.Lock()
	// An Invalidate during the fetch means this copy may already be stale.
	if r.generation == gen {
		r.cached = menu
	}
	r.mu.Unlock()

	metrics.MenuCacheRefreshes.WithLabelValues("ok").Inc()
	r.logger.DebugContext(ctx, "menu refreshed",
		slog.Int("dishes", len(dishes)),
		slog.Int("prices", len(prices)),
	)
	return menu, nil
}

// Invalidate drops the cached menu so the next read goes to the backend
func (r *CachedMenuRepository) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.generation++
	r.mu.Unlock()
	r.group.Forget("menu")
}
