package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/validator"
)

// DefaultMinQuantity is the inventory threshold used when none is given
const DefaultMinQuantity = 30

var (
	ErrInvalidDateRange   = errors.New("both dates are required and the start date must not be after the end date")
	ErrNegativeQuantity   = errors.New("minimum quantity must not be negative")
	ErrNegativeMinOrders  = errors.New("minimum orders must not be negative")
	ErrDishTypeRequired   = errors.New("dish type is required")
	ErrInvalidPriceChange = errors.New("price change must be greater than -100 percent")
)

// ReportSource runs the backend's stored reports
type ReportSource interface {
	Revenue(ctx context.Context, start, end models.Date) (models.RevenueReport, error)
	PopularDishes(ctx context.Context, start, end models.Date, minOrders int) (models.PopularDishesReport, error)
	StaffPerformance(ctx context.Context, start, end models.Date) (models.StaffPerformanceReport, error)
	Inventory(ctx context.Context, minQuantity int) (models.InventoryReport, error)
	UpdatePrices(ctx context.Context, dishType string, percent decimal.Decimal) (models.UpdatePricesResult, error)
}

// AdminService validates report parameters before they reach the backend
type AdminService struct {
	reports       ReportSource
	pricesChanged func()
}

// NewAdminService creates an admin service. pricesChanged runs after a bulk price update.
func NewAdminService(reports ReportSource, pricesChanged func()) *AdminService {
	if pricesChanged == nil {
		pricesChanged = func() {}
	}
	return &AdminService{
		reports:       reports,
		pricesChanged: pricesChanged,
	}
}

func checkRange(start, end models.Date) error {
	if start.IsZero() || end.IsZero() || start.After(end.Time) {
		return ErrInvalidDateRange
	}
	return nil
}

// Revenue returns the revenue between start and end inclusive
func (s *AdminService) Revenue(ctx context.Context, start, end models.Date) (models.RevenueReport, error) {
	if err := checkRange(start, end); err != nil {
		return models.RevenueReport{}, err
	}
	return s.reports.Revenue(ctx, start, end)
}

// PopularDishes lists dishes ordered at least minOrders times
func (s *AdminService) PopularDishes(ctx context.Context, start, end models.Date, minOrders int) (models.PopularDishesReport, error) {
	if err := checkRange(start, end); err != nil {
		return models.PopularDishesReport{}, err
	}
	if minOrders < 0 {
		return models.PopularDishesReport{}, ErrNegativeMinOrders
	}
	return s.reports.PopularDishes(ctx, start, end, minOrders)
}

// StaffPerformance reports orders and revenue per staff member
func (s *AdminService) StaffPerformance(ctx context.Context, start, end models.Date) (models.StaffPerformanceReport, error) {
	if err := checkRange(start, end); err != nil {
		return models.StaffPerformanceReport{}, err
	}
	return s.reports.StaffPerformance(ctx, start, end)
}

// Inventory checks stock levels. A nil minQuantity means DefaultMinQuantity.
func (s *AdminService) Inventory(ctx context.Context, minQuantity *int) (models.InventoryReport, error) {
	threshold := DefaultMinQuantity
	if minQuantity != nil {
		if *minQuantity < 0 {
			return models.InventoryReport{}, ErrNegativeQuantity
		}
		threshold = *minQuantity
	}
	return s.reports.Inventory(ctx, threshold)
}

// UpdatePrices changes every price of a dish type by a percentage
func (s *AdminService) UpdatePrices(ctx context.Context, req models.UpdatePricesRequest) (models.UpdatePricesResult, error) {
	if req.DishType == "" {
		return models.UpdatePricesResult{}, ErrDishTypeRequired
	}
	if req.PriceChangePercent.LessThanOrEqual(decimal.NewFromInt(-100)) {
		return models.UpdatePricesResult{}, ErrInvalidPriceChange
	}

	result, err := s.reports.UpdatePrices(ctx, req.DishType, req.PriceChangePercent)
	if err != nil {
		return models.UpdatePricesResult{}, err
	}
	s.pricesChanged()
	return result, nil
}

// ReferenceStore is the CRUD surface of one reference table
type ReferenceStore[T any] interface {
	Name() string
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, in T) (T, error)
	Update(ctx context.Context, id int64, in T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// ReferenceService validates writes to a reference table and runs onChange after each one
type ReferenceService[T any] struct {
	store    ReferenceStore[T]
	onChange func()
}

// NewReferenceService wraps store. onChange may be nil.
func NewReferenceService[T any](store ReferenceStore[T], onChange func()) *ReferenceService[T] {
	if onChange == nil {
		onChange = func() {}
	}
	return &ReferenceService[T]{store: store, onChange: onChange}
}

func (s *ReferenceService[T]) Name() string { return s.store.Name() }

func (s *ReferenceService[T]) List(ctx context.Context) ([]T, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.store.Name(), err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *ReferenceService[T]) Get(ctx context.Context, id int64) (T, error) {
	return s.store.Get(ctx, id)
}

func (s *ReferenceService[T]) Create(ctx context.Context, in T) (T, error) {
	var zero T
	if err := validator.Validate(in); err != nil {
		return zero, err
	}
	out, err := s.store.Create(ctx, in)
	if err != nil {
		return zero, err
	}
	s.onChange()
	return out, nil
}

func (s *ReferenceService[T]) Update(ctx context.Context, id int64, in T) (T, error) {
	var zero T
	if err := validator.Validate(in); err != nil {
		return zero, err
	}
	out, err := s.store.Update(ctx, id, in)
	if err != nil {
		return zero, err
	}
	s.onChange()
	return out, nil
}

func (s *ReferenceService[T]) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.onChange()
	return nil
}
