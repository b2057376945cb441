package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/repository"
)

type staticMenu struct {
	menu repository.Menu
}

func (s *staticMenu) Menu(ctx context.Context) (*repository.Menu, error) { return &s.menu, nil }
func (s *staticMenu) Invalidate()                                        {}

func date(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestCurrentPrice(t *testing.T) {
	day := date(t, "2024-06-10")

	tests := []struct {
		name   string
		prices []models.Price
		wantID int64
		found  bool
	}{
		{
			name:   "no rows",
			prices: nil,
		},
		{
			name: "expired row is ignored",
			prices: []models.Price{
				{ID: 1, DishID: 1, Price: amount("10"), ValidTo: date(t, "2024-06-01")},
			},
		},
		{
			name: "null price is ignored",
			prices: []models.Price{
				{ID: 1, DishID: 1},
			},
		},
		{
			name: "other dish is ignored",
			prices: []models.Price{
				{ID: 1, DishID: 2, Price: amount("10")},
			},
		},
		{
			name: "latest valid_from wins",
			prices: []models.Price{
				{ID: 1, DishID: 1, Price: amount("10"), ValidFrom: date(t, "2024-01-01")},
				{ID: 2, DishID: 1, Price: amount("12"), ValidFrom: date(t, "2024-06-01")},
				{ID: 3, DishID: 1, Price: amount("15"), ValidFrom: date(t, "2024-07-01")},
			},
			wantID: 2,
			found:  true,
		},
		{
			name: "regular wins a tie",
			prices: []models.Price{
				{ID: 1, DishID: 1, Price: amount("8"), ValidFrom: date(t, "2024-06-01"), PriceType: models.PriceTypeBusinessLunch},
				{ID: 2, DishID: 1, Price: amount("10"), ValidFrom: date(t, "2024-06-01"), PriceType: models.PriceTypeRegular},
				{ID: 3, DishID: 1, Price: amount("9"), ValidFrom: date(t, "2024-06-01"), PriceType: models.PriceTypeSpecial},
			},
			wantID: 2,
			found:  true,
		},
		{
			name: "open range applies",
			prices: []models.Price{
				{ID: 4, DishID: 1, Price: amount("10")},
			},
			wantID: 4,
			found:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := CurrentPrice(tt.prices, 1, day)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.wantID, p.ID)
			}
		})
	}
}

func newMenuService(t *testing.T) *MenuService {
	repo := &staticMenu{menu: repository.Menu{
		Dishes: []models.Dish{
			{ID: 1, Name: "Borscht", Type: "soup"},
			{ID: 2, Name: "Pelmeni", Type: "main"},
			{ID: 3, Name: "Solyanka", Type: "soup"},
			{ID: 4, Name: "Bread", Type: ""},
		},
		Prices: []models.Price{
			{ID: 10, DishID: 1, Price: amount("100")},
			{ID: 11, DishID: 2, Price: amount("50")},
		},
	}}
	svc := NewMenuService(repo)
	svc.now = func() time.Time { return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestMenuService_Menu(t *testing.T) {
	svc := newMenuService(t)

	items, err := svc.Menu(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.True(t, items[0].Available)
	assert.True(t, items[0].Price.Decimal.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(10), items[0].PriceID)
	assert.False(t, items[2].Available)
	assert.False(t, items[2].Price.Valid)

	soups, err := svc.Menu(context.Background(), "soup")
	require.NoError(t, err)
	require.Len(t, soups, 2)
	assert.Equal(t, "Solyanka", soups[1].Dish.Name)
}

func TestMenuService_Categories(t *testing.T) {
	svc := newMenuService(t)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"soup", "main"}, categories)
}

func TestMenuService_Item(t *testing.T) {
	svc := newMenuService(t)

	item, err := svc.Item(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Pelmeni", item.Dish.Name)
	assert.True(t, item.Available)

	_, err = svc.Item(context.Background(), 99)
	assert.ErrorIs(t, err, ErrDishNotFound)
}
