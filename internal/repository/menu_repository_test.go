package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
)

type fakeSource struct {
	dishCalls  atomic.Int32
	priceCalls atomic.Int32
	delay      time.Duration
	failDishes atomic.Bool
}

func (f *fakeSource) Dishes(ctx context.Context) ([]models.Dish, error) {
	f.dishCalls.Add(1)
	time.Sleep(f.delay)
	if f.failDishes.Load() {
		return nil, errors.New("backend down")
	}
	return []models.Dish{
		{ID: 1, Name: "Borscht", Type: "soup"},
		{ID: 2, Name: "Pelmeni", Type: "main"},
	}, nil
}

func (f *fakeSource) Prices(ctx context.Context) ([]models.Price, error) {
	f.priceCalls.Add(1)
	time.Sleep(f.delay)
	return []models.Price{{ID: 1, DishID: 1}}, nil
}

func newRepo(src MenuSource, ttl time.Duration) *CachedMenuRepository {
	return NewCachedMenuRepository(src, ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCachedMenuRepository_CachesWithinTTL(t *testing.T) {
	src := &fakeSource{}
	repo := newRepo(src, time.Minute)

	menu, err := repo.Menu(context.Background())
	require.NoError(t, err)
	assert.Len(t, menu.Dishes, 2)
	assert.Len(t, menu.Prices, 1)

	_, err = repo.Menu(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.dishCalls.Load())
	assert.Equal(t, int32(1), src.priceCalls.Load())
}

func TestCachedMenuRepository_RefreshesAfterTTL(t *testing.T) {
	src := &fakeSource{}
	repo := newRepo(src, time.Minute)
	now := time.Now()
	repo.now = func() time.Time { return now }

	_, err := repo.Menu(context.Background())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = repo.Menu(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.dishCalls.Load())
}

func TestCachedMenuRepository_SingleFlight(t *testing.T) {
	src := &fakeSource{delay: 50 * time.Millisecond}
	repo := newRepo(src, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Menu(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.dishCalls.Load())
}

func TestCachedMenuRepository_ServesStaleOnFailure(t *testing.T) {
	src := &fakeSource{}
	repo := newRepo(src, time.Minute)
	now := time.Now()
	repo.now = func() time.Time { return now }

	first, err := repo.Menu(context.Background())
	require.NoError(t, err)

	src.failDishes.Store(true)
	now = now.Add(time.Hour)

	menu, err := repo.Menu(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, menu)
}

func TestCachedMenuRepository_ErrorWithoutCache(t *testing.T) {
	src := &fakeSource{}
	src.failDishes.Store(true)
	repo := newRepo(src, time.Minute)

	_, err := repo.Menu(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load dishes")
}

func TestCachedMenuRepository_Invalidate(t *testing.T) {
	src := &fakeSource{}
	repo := newRepo(src, time.Minute)

	_, err := repo.Menu(context.Background())
	require.NoError(t, err)
	repo.Invalidate()
	_, err = repo.Menu(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.dishCalls.Load())
}

// blockingSource serves the menu once release is closed, or fails when ctx ends first
type blockingSource struct {
	entered chan struct{}
	once    sync.Once
	release chan struct{}
}

func (b *blockingSource) wait(ctx context.Context) error {
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingSource) Dishes(ctx context.Context) ([]models.Dish, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return []models.Dish{{ID: 1, Name: "Borscht", Type: "soup"}}, nil
}

func (b *blockingSource) Prices(ctx context.Context) ([]models.Price, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return []models.Price{{ID: 1, DishID: 1}}, nil
}

func TestCachedMenuRepository_FirstCallerCancelDoesNotFailOthers(t *testing.T) {
	src := &blockingSource{entered: make(chan struct{}), release: make(chan struct{})}
	repo := newRepo(src, time.Minute)

	leaderCtx, cancel := context.WithCancel(context.Background())
	var leaderErr, followerErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, leaderErr = repo.Menu(leaderCtx)
	}()
	<-src.entered
	go func() {
		defer wg.Done()
		_, followerErr = repo.Menu(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.NoError(t, leaderErr)
	assert.NoError(t, followerErr)

	menu, err := repo.Menu(context.Background())
	require.NoError(t, err)
	assert.Len(t, menu.Dishes, 1)
}
