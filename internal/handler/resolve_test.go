package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mearah/craftbom/internal/bom"
	"github.com/mearah/craftbom/internal/domain"
)

// MockBOMService
type MockBOMService struct {
	mock.Mock
}

func (m *MockBOMService) Resolve(ctx context.Context, kind domain.Kind, id, quantity int) (*bom.Totals, error) {
	args := m.Called(ctx, kind, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bom.Totals), args.Error(1)
}

func (m *MockBOMService) ResolveByName(ctx context.Context, kind domain.Kind, name string, quantity int) (*bom.Totals, error) {
	args := m.Called(ctx, kind, name, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bom.Totals), args.Error(1)
}

func (m *MockBOMService) ResolveBatch(ctx context.Context, requests []bom.Request) (*bom.Totals, error) {
	args := m.Called(ctx, requests)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bom.Totals), args.Error(1)
}

func (m *MockBOMService) BuildTree(ctx context.Context, kind domain.Kind, id, quantity int) (*bom.TreeNode, error) {
	args := m.Called(ctx, kind, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bom.TreeNode), args.Error(1)
}

func (m *MockBOMService) InvalidateCache() {
	m.Called()
}

// stubRepo serves the single Wood base material for report building
type stubRepo struct{}

func (stubRepo) GetItemByID(_ context.Context, kind domain.Kind, id int) (*domain.Item, error) {
	if kind == domain.KindBase && id == 1 {
		return &domain.Item{ID: 1, Kind: domain.KindBase, Name: "Wood", OutputQuantity: 1, UnitCost: 10}, nil
	}
	return nil, domain.ErrItemNotFound
}

func (stubRepo) GetItemByName(_ context.Context, kind domain.Kind, name string) (*domain.Item, error) {
	return nil, domain.ErrItemNotFound
}

func (stubRepo) ListRequirements(_ context.Context, kind domain.Kind, id int) ([]domain.RecipeRequirement, error) {
	return nil, nil
}

// stubSettings returns a fixed 5% tax rate
type stubSettings struct{}

func (stubSettings) GetSetting(_ context.Context, _, defaultValue string) (string, error) {
	return defaultValue, nil
}
func (stubSettings) SetSetting(_ context.Context, _, _ string) error  { return nil }
func (stubSettings) GetTaxRate(_ context.Context) (float64, error)   { return 5.0, nil }
func (stubSettings) SetTaxRate(_ context.Context, _ float64) error   { return nil }

func testReporter() *bom.Reporter {
	return bom.NewReporter(stubRepo{}, stubSettings{})
}

func woodTotals() *bom.Totals {
	return &bom.Totals{
		Base:          map[int]int{1: 6},
		Intermediates: map[domain.ItemKey]int{},
	}
}

func TestHandleResolveByID(t *testing.T) {
	svc := new(MockBOMService)
	svc.On("Resolve", mock.Anything, domain.KindProduct, 1, 1).Return(woodTotals(), nil)

	req := httptest.NewRequest(http.MethodPost, "/resolve",
		strings.NewReader(`{"kind":"product","id":1,"quantity":1}`))
	rec := httptest.NewRecorder()

	HandleResolve(svc, testReporter())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report bom.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Lines, 1)
	assert.Equal(t, "Wood", report.Lines[0].Name)
	assert.Equal(t, 6, report.Lines[0].Quantity)
	assert.Equal(t, 60.0, report.TotalCost)
	assert.InDelta(t, 63.0, report.TotalWithTax, 0.001)
	svc.AssertExpectations(t)
}

func TestHandleResolveByName(t *testing.T) {
	svc := new(MockBOMService)
	svc.On("ResolveByName", mock.Anything, domain.KindProduct, "Table", 2).Return(woodTotals(), nil)

	req := httptest.NewRequest(http.MethodPost, "/resolve",
		strings.NewReader(`{"kind":"product","name":"Table","quantity":2}`))
	rec := httptest.NewRecorder()

	HandleResolve(svc, testReporter())(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestHandleResolveInvalidBody(t *testing.T) {
	svc := new(MockBOMService)

	req := httptest.NewRequest(http.MethodPost, "/resolve", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	HandleResolve(svc, testReporter())(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Resolve")
}

func TestHandleResolveValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing kind", `{"id":1,"quantity":1}`},
		{"bad kind", `{"kind":"weapon","id":1,"quantity":1}`},
		{"missing quantity", `{"kind":"product","id":1}`},
		{"zero quantity", `{"kind":"product","id":1,"quantity":0}`},
		{"missing id and name", `{"kind":"product","quantity":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockBOMService)
			req := httptest.NewRequest(http.MethodPost, "/resolve", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			HandleResolve(svc, testReporter())(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Validation failed")
			svc.AssertNotCalled(t, "Resolve")
			svc.AssertNotCalled(t, "ResolveByName")
		})
	}
}

func TestHandleResolveErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", domain.ErrItemNotFound, http.StatusNotFound},
		{"cycle", domain.ErrCycleDetected, http.StatusUnprocessableEntity},
		{"invalid quantity", domain.ErrInvalidQuantity, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockBOMService)
			svc.On("Resolve", mock.Anything, domain.KindProduct, 1, 1).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/resolve",
				strings.NewReader(`{"kind":"product","id":1,"quantity":1}`))
			rec := httptest.NewRecorder()

			HandleResolve(svc, testReporter())(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
