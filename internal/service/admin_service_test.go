package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/validator"
)

type mockReports struct {
	mock.Mock
}

func (m *mockReports) Revenue(ctx context.Context, start, end models.Date) (models.RevenueReport, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(models.RevenueReport), args.Error(1)
}

func (m *mockReports) PopularDishes(ctx context.Context, start, end models.Date, minOrders int) (models.PopularDishesReport, error) {
	args := m.Called(ctx, start, end, minOrders)
	return args.Get(0).(models.PopularDishesReport), args.Error(1)
}

func (m *mockReports) StaffPerformance(ctx context.Context, start, end models.Date) (models.StaffPerformanceReport, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(models.StaffPerformanceReport), args.Error(1)
}

func (m *mockReports) Inventory(ctx context.Context, minQuantity int) (models.InventoryReport, error) {
	args := m.Called(ctx, minQuantity)
	return args.Get(0).(models.InventoryReport), args.Error(1)
}

func (m *mockReports) UpdatePrices(ctx context.Context, dishType string, percent decimal.Decimal) (models.UpdatePricesResult, error) {
	args := m.Called(ctx, dishType, percent)
	return args.Get(0).(models.UpdatePricesResult), args.Error(1)
}

func TestAdminService_DateRange(t *testing.T) {
	jan1 := date(t, "2024-01-01")
	jan31 := date(t, "2024-01-31")

	tests := []struct {
		name       string
		start, end models.Date
		wantErr    error
	}{
		{name: "valid range", start: jan1, end: jan31},
		{name: "same day", start: jan1, end: jan1},
		{name: "reversed", start: jan31, end: jan1, wantErr: ErrInvalidDateRange},
		{name: "missing start", end: jan31, wantErr: ErrInvalidDateRange},
		{name: "missing end", start: jan1, wantErr: ErrInvalidDateRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := &mockReports{}
			reports.On("Revenue", mock.Anything, tt.start, tt.end).
				Return(models.RevenueReport{TotalRevenue: decimal.NewFromInt(10)}, nil).Maybe()
			svc := NewAdminService(reports, nil)

			report, err := svc.Revenue(context.Background(), tt.start, tt.end)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				reports.AssertNotCalled(t, "Revenue", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.True(t, report.TotalRevenue.Equal(decimal.NewFromInt(10)))
		})
	}
}

func TestAdminService_PopularDishes(t *testing.T) {
	start, end := date(t, "2024-01-01"), date(t, "2024-01-31")
	reports := &mockReports{}
	reports.On("PopularDishes", mock.Anything, start, end, 0).Return(models.PopularDishesReport{}, nil)
	svc := NewAdminService(reports, nil)

	_, err := svc.PopularDishes(context.Background(), start, end, -1)
	assert.ErrorIs(t, err, ErrNegativeMinOrders)

	_, err = svc.PopularDishes(context.Background(), start, end, 0)
	assert.NoError(t, err)
	reports.AssertExpectations(t)
}

func TestAdminService_StaffPerformance(t *testing.T) {
	start, end := date(t, "2024-01-01"), date(t, "2024-01-31")
	reports := &mockReports{}
	reports.On("StaffPerformance", mock.Anything, start, end).Return(models.StaffPerformanceReport{
		Performance: []models.StaffPerformance{{StaffID: 1, StaffName: "Ann", OrdersCount: 3}},
	}, nil)
	svc := NewAdminService(reports, nil)

	report, err := svc.StaffPerformance(context.Background(), start, end)
	require.NoError(t, err)
	assert.Len(t, report.Performance, 1)
}

func TestAdminService_Inventory(t *testing.T) {
	five := 5
	negative := -1

	reports := &mockReports{}
	reports.On("Inventory", mock.Anything, DefaultMinQuantity).Return(models.InventoryReport{}, nil).Once()
	reports.On("Inventory", mock.Anything, 5).Return(models.InventoryReport{}, nil).Once()
	svc := NewAdminService(reports, nil)

	_, err := svc.Inventory(context.Background(), nil)
	require.NoError(t, err)
	_, err = svc.Inventory(context.Background(), &five)
	require.NoError(t, err)
	_, err = svc.Inventory(context.Background(), &negative)
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	reports.AssertExpectations(t)
}

func TestAdminService_UpdatePrices(t *testing.T) {
	var invalidated int
	reports := &mockReports{}
	svc := NewAdminService(reports, func() { invalidated++ })

	_, err := svc.UpdatePrices(context.Background(), models.UpdatePricesRequest{PriceChangePercent: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ErrDishTypeRequired)

	_, err = svc.UpdatePrices(context.Background(), models.UpdatePricesRequest{DishType: "soup", PriceChangePercent: decimal.NewFromInt(-100)})
	assert.ErrorIs(t, err, ErrInvalidPriceChange)

	reports.On("UpdatePrices", mock.Anything, "soup", decimal.NewFromInt(10)).
		Return(models.UpdatePricesResult{UpdatedCount: 4}, nil).Once()
	result, err := svc.UpdatePrices(context.Background(), models.UpdatePricesRequest{DishType: "soup", PriceChangePercent: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, 4, result.UpdatedCount)
	assert.Equal(t, 1, invalidated)

	reports.On("UpdatePrices", mock.Anything, "main", decimal.NewFromInt(10)).
		Return(models.UpdatePricesResult{}, errors.New("down")).Once()
	_, err = svc.UpdatePrices(context.Background(), models.UpdatePricesRequest{DishType: "main", PriceChangePercent: decimal.NewFromInt(10)})
	assert.Error(t, err)
	assert.Equal(t, 1, invalidated)
}

type memoryTable struct {
	rows    map[int64]models.Drink
	nextID  int64
	failure error
}

func (m *memoryTable) Name() string { return "drink" }

func (m *memoryTable) List(ctx context.Context) ([]models.Drink, error) {
	if m.failure != nil {
		return nil, m.failure
	}
	out := []models.Drink{}
	for _, d := range m.rows {
		out = append(out, d)
	}
	return out, nil
}

func (m *memoryTable) Get(ctx context.Context, id int64) (models.Drink, error) {
	return m.rows[id], nil
}

func (m *memoryTable) Create(ctx context.Context, in models.Drink) (models.Drink, error) {
	m.nextID++
	in.ID = m.nextID
	m.rows[in.ID] = in
	return in, nil
}

func (m *memoryTable) Update(ctx context.Context, id int64, in models.Drink) (models.Drink, error) {
	in.ID = id
	m.rows[id] = in
	return in, nil
}

func (m *memoryTable) Delete(ctx context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

func TestReferenceService(t *testing.T) {
	table := &memoryTable{rows: map[int64]models.Drink{}}
	var changes int
	svc := NewReferenceService[models.Drink](table, func() { changes++ })
	ctx := context.Background()

	_, err := svc.Create(ctx, models.Drink{})
	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "name")
	assert.Equal(t, 0, changes)

	created, err := svc.Create(ctx, models.Drink{Name: "Kompot"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	updated, err := svc.Update(ctx, created.ID, models.Drink{Name: "Mors"})
	require.NoError(t, err)
	assert.Equal(t, "Mors", updated.Name)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, 3, changes)
	assert.Equal(t, "drink", svc.Name())

	table.failure = errors.New("down")
	_, err = svc.List(ctx)
	assert.ErrorContains(t, err, "list drink")
}
