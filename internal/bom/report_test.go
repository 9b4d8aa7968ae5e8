package bom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mearah/craftbom/internal/domain"
)

// MockSettings
type MockSettings struct {
	mock.Mock
}

func (m *MockSettings) GetSetting(ctx context.Context, key, defaultValue string) (string, error) {
	args := m.Called(ctx, key, defaultValue)
	return args.String(0), args.Error(1)
}

func (m *MockSettings) SetSetting(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockSettings) GetTaxRate(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockSettings) SetTaxRate(ctx context.Context, rate float64) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func TestReporterBuild(t *testing.T) {
	repo := woodPlankTableRepo()
	settings := new(MockSettings)
	settings.On("GetTaxRate", mock.Anything).Return(5.0, nil)

	svc := NewService(repo)
	reporter := NewReporter(repo, settings)
	ctx := context.Background()

	totals, err := svc.Resolve(ctx, domain.KindProduct, 1, 1)
	require.NoError(t, err)

	report, err := reporter.Build(ctx, totals)
	require.NoError(t, err)

	require.Len(t, report.Lines, 1)
	line := report.Lines[0]
	assert.Equal(t, "Wood", line.Name)
	assert.Equal(t, 6, line.Quantity)
	assert.Equal(t, 10.0, line.UnitCost)
	assert.Equal(t, 60.0, line.TotalCost)

	assert.Equal(t, 60.0, report.TotalCost)
	assert.Equal(t, 5.0, report.TaxRate)
	assert.InDelta(t, 63.0, report.TotalWithTax, 0.001)

	// Intermediates carry display-cased kinds, sorted by name
	require.Len(t, report.Intermediates, 2)
	assert.Equal(t, "Plank", report.Intermediates[0].Name)
	assert.Equal(t, "Material", report.Intermediates[0].Kind)
	assert.Equal(t, 3, report.Intermediates[0].Quantity)
	assert.Equal(t, "Table", report.Intermediates[1].Name)
	assert.Equal(t, "Product", report.Intermediates[1].Kind)
}

func TestReporterSortsLinesByName(t *testing.T) {
	repo := new(MockRepository)
	settings := new(MockSettings)
	settings.On("GetTaxRate", mock.Anything).Return(0.0, nil)

	registerItem(repo, &domain.Item{ID: 1, Kind: domain.KindBase, Name: "Zinc", OutputQuantity: 1, UnitCost: 1}, nil)
	registerItem(repo, &domain.Item{ID: 2, Kind: domain.KindBase, Name: "Copper", OutputQuantity: 1, UnitCost: 2}, nil)
	registerItem(repo, &domain.Item{ID: 3, Kind: domain.KindBase, Name: "amber", OutputQuantity: 1, UnitCost: 3}, nil)

	reporter := NewReporter(repo, settings)
	totals := newTotals()
	totals.Base[1] = 1
	totals.Base[2] = 1
	totals.Base[3] = 1

	report, err := reporter.Build(context.Background(), totals)
	require.NoError(t, err)

	require.Len(t, report.Lines, 3)
	assert.Equal(t, "amber", report.Lines[0].Name, "collation is case-insensitive")
	assert.Equal(t, "Copper", report.Lines[1].Name)
	assert.Equal(t, "Zinc", report.Lines[2].Name)
}

func TestReporterMissingItem(t *testing.T) {
	repo := new(MockRepository)
	settings := new(MockSettings)
	repo.On("GetItemByID", mock.Anything, domain.KindBase, 42).Return(nil, domain.ErrItemNotFound)

	reporter := NewReporter(repo, settings)
	totals := newTotals()
	totals.Base[42] = 1

	_, err := reporter.Build(context.Background(), totals)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}
