package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ordering-service/internal/apperr"
	"ordering-service/internal/models"
	"ordering-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	orders     map[string]*models.Order
	categories []models.Category
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[string]*models.Order)}
}

func (f *fakeStore) CreateOrder(_ context.Context, order *models.Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeStore) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "order", ID: id}
	}
	return order, nil
}

func (f *fakeStore) GetOrderByIdempotencyKey(_ context.Context, key string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.IdempotencyKey == key {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListOrders(_ context.Context) ([]models.Order, error) {
	out := make([]models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeStore) GetCategories(_ context.Context) ([]models.Category, error) {
	return f.categories, nil
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(context.Context, string) (bool, error) { return false, nil }

func newTestRouter(store *fakeStore, limiter RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)

	orders := service.NewOrderService(store, nil)
	catalog := service.NewCatalogService(store, nil, 0)

	router := gin.New()
	handler := NewHandler(orders, catalog, limiter, Options{
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	handler.SetupRoutes(router)
	return router
}

func postOrder(t *testing.T, router *gin.Engine, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validSubmission() *models.OrderSubmission {
	return &models.OrderSubmission{
		UserDetails: models.UserDetails{
			FirstName: "Dana",
			LastName:  "Levi",
			Email:     "dana@example.com",
		},
		SelectedProducts: []models.SubmittedItem{
			{ID: "1", Name: "Coffee", Category: "Drinks", Price: 10, Quantity: 2},
			{ID: "2", Name: "Bread", Category: "Bakery", Price: 5, Quantity: 3},
		},
	}
}

func TestCreateOrderReturns201WithRecomputedTotal(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, nil)

	sub := validSubmission()
	sub.TotalAmount = 1

	w := postOrder(t, router, sub)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			OrderID     string  `json:"orderId"`
			TotalAmount float64 `json:"totalAmount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 35.0, resp.Data.TotalAmount)
	assert.Contains(t, store.orders, resp.Data.OrderID)
}

func TestCreateOrderValidationFailureReturns400(t *testing.T) {
	router := newTestRouter(newFakeStore(), nil)

	sub := validSubmission()
	sub.UserDetails.Email = "not-an-email"

	w := postOrder(t, router, sub)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Errors  []apperr.Violation `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "userDetails.email", resp.Errors[0].Field)
}

func TestCreateOrderMalformedBodyReturns400(t *testing.T) {
	router := newTestRouter(newFakeStore(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader([]byte("{nope")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderUnknownIDReturns404(t *testing.T) {
	router := newTestRouter(newFakeStore(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/no-such-id", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestListCategoriesReturnsBareList(t *testing.T) {
	store := newFakeStore()
	store.categories = []models.Category{
		{ID: 1, Name: "Drinks", Products: []models.Product{
			{ID: 10, Name: "Coffee", Price: 25, CategoryID: 1},
		}},
	}
	router := newTestRouter(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var categories []models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	require.Len(t, categories, 1)
	assert.Equal(t, "Drinks", categories[0].Name)
}

func TestRateLimitedWriteReturns429(t *testing.T) {
	router := newTestRouter(newFakeStore(), denyAllLimiter{})

	w := postOrder(t, router, validSubmission())

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(newFakeStore(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
