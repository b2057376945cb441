package service

import (
	"context"
	"time"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/repository"
)

// ErrDishNotFound is returned when a dish id is not on the menu
var ErrDishNotFound = repository.ErrDishNotFound

// MenuService pairs dishes with the price that applies today
type MenuService struct {
	repo repository.MenuRepository
	now  func() time.Time
}

// NewMenuService creates a new menu service
func NewMenuService(repo repository.MenuRepository) *MenuService {
	return &MenuService{
		repo: repo,
		now:  time.Now,
	}
}

// Menu returns every dish with its current price, optionally restricted to one category
func (s *MenuService) Menu(ctx context.Context, category string) ([]models.MenuItem, error) {
	menu, err := s.repo.Menu(ctx)
	if err != nil {
		return nil, err
	}

	today := models.NewDate(s.now())
	items := make([]models.MenuItem, 0, len(menu.Dishes))
	for _, dish := range menu.Dishes {
		if category != "" && dish.Type != category {
			continue
		}
		items = append(items, menuItem(dish, menu.Prices, today))
	}
	return items, nil
}

// Categories returns the distinct non-empty dish types in first-seen order
func (s *MenuService) Categories(ctx context.Context) ([]string, error) {
	menu, err := s.repo.Menu(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	categories := []string{}
	for _, dish := range menu.Dishes {
		if dish.Type == "" {
			continue
		}
		if _, ok := seen[dish.Type]; ok {
			continue
		}
		seen[dish.Type] = struct{}{}
		categories = append(categories, dish.Type)
	}
	return categories, nil
}

// Item returns one dish with its current price
func (s *MenuService) Item(ctx context.Context, dishID int64) (models.MenuItem, error) {
	menu, err := s.repo.Menu(ctx)
	if err != nil {
		return models.MenuItem{}, err
	}
	for _, dish := range menu.Dishes {
		if dish.ID == dishID {
			return menuItem(dish, menu.Prices, models.NewDate(s.now())), nil
		}
	}
	return models.MenuItem{}, ErrDishNotFound
}

func menuItem(dish models.Dish, prices []models.Price, day models.Date) models.MenuItem {
	item := models.MenuItem{Dish: dish}
	if p, ok := CurrentPrice(prices, dish.ID, day); ok {
		item.Price = p.Price
		item.PriceID = p.ID
		item.Available = true
	}
	return item
}

// CurrentPrice picks the price of dishID that applies on day. Only rows with a
// price and a validity range covering day qualify; the latest valid_from wins,
// then the regular price type, then the highest price id.
func CurrentPrice(prices []models.Price, dishID int64, day models.Date) (models.Price, bool) {
	var (
		best  models.Price
		found bool
	)
	for _, p := range prices {
		if p.DishID != dishID || !p.Price.Valid || !p.ActiveOn(day) {
			continue
		}
		if !found || preferPrice(p, best) {
			best = p
			found = true
		}
	}
	return best, found
}

func preferPrice(a, b models.Price) bool {
	if !a.ValidFrom.Equal(b.ValidFrom.Time) {
		return a.ValidFrom.After(b.ValidFrom.Time)
	}
	aRegular := a.PriceType == models.PriceTypeRegular
	bRegular := b.PriceType == models.PriceTypeRegular
	if aRegular != bRegular {
		return aRegular
	}
	return a.ID > b.ID
}
