package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"pocket-pos/internal/domain"
	"pocket-pos/internal/middleware"
	"pocket-pos/internal/repository"
	"pocket-pos/internal/service"
	"pocket-pos/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(slot storage.Slot) http.Handler {
	products := repository.NewProductRepository(slot, "products")
	sales := repository.NewSaleRepository(slot, "sales")
	logger := zap.NewNop()

	router := chi.NewRouter()
	NewProductHandler(service.NewInventoryService(products, sales), logger).RegisterRoutes(router)
	NewSaleHandler(service.NewSaleService(products, sales, true), logger).RegisterRoutes(router)
	return router
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestProperty_FormValueAcceptsStringsAndNumbers(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a number and its quoted text decode to the same form value", prop.ForAll(
		func(cents int64) bool {
			text := decimal.New(cents, -2).String()

			var fromNumber, fromString FormValue
			if err := json.Unmarshal([]byte(text), &fromNumber); err != nil {
				return false
			}
			if err := json.Unmarshal([]byte(strconv.Quote(text)), &fromString); err != nil {
				return false
			}
			return fromNumber == fromString && string(fromNumber) == text
		},
		gen.Int64Range(0, 1_000_000_00),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormValue_RejectsOtherTypes(t *testing.T) {
	for _, raw := range []string{`true`, `{}`, `[1]`} {
		var v FormValue
		assert.Error(t, json.Unmarshal([]byte(raw), &v), raw)
	}

	var v FormValue = "stale"
	require.NoError(t, json.Unmarshal([]byte(`null`), &v))
	assert.Empty(t, v)
}

func TestProductHandler_CRUD(t *testing.T) {
	router := newTestRouter(storage.NewMemorySlot())

	w := do(t, router, http.MethodPost, "/api/products", map[string]interface{}{
		"name":     "Rye bread",
		"price":    3.2,
		"quantity": "12",
		"details":  "sliced",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[domain.Product](t, w)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("3.2")))
	assert.Nil(t, created.Image)

	w = do(t, router, http.MethodGet, "/api/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sliced", decode[domain.Product](t, w).Details)

	w = do(t, router, http.MethodPut, "/api/products/"+created.ID, map[string]interface{}{
		"name":        "Rye bread",
		"price":       "3.50",
		"quantity":    10,
		"description": "whole loaf",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[domain.Product](t, w)
	assert.Equal(t, "whole loaf", updated.Details)
	assert.Equal(t, 10, updated.Quantity)
	assert.Equal(t, created.ID, updated.ID)

	w = do(t, router, http.MethodPut, "/api/products/missing", map[string]interface{}{
		"name": "Ghost", "price": 1, "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodDelete, "/api/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodDelete, "/api/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code, "delete is idempotent")

	w = do(t, router, http.MethodGet, "/api/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_EmptyImageClears(t *testing.T) {
	router := newTestRouter(storage.NewMemorySlot())

	w := do(t, router, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Bagel", "price": 1, "quantity": 3, "image": "",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[domain.Product](t, w)
	assert.Nil(t, created.Image)

	w = do(t, router, http.MethodPut, "/api/products/"+created.ID, map[string]interface{}{
		"name": "Bagel", "price": 1, "quantity": 3, "image": "https://cdn.shop/bagel.png",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, decode[domain.Product](t, w).Image)

	w = do(t, router, http.MethodPut, "/api/products/"+created.ID, map[string]interface{}{
		"name": "Bagel", "price": 1, "quantity": 3, "image": "",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decode[domain.Product](t, w).Image)
}

func TestProductHandler_Validation(t *testing.T) {
	router := newTestRouter(storage.NewMemorySlot())

	w := do(t, router, http.MethodPost, "/api/products", map[string]interface{}{
		"name":     "",
		"price":    "twelve",
		"quantity": -1,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	response := decode[middleware.ErrorResponse](t, w)
	errs, ok := response.Error.Details["validation_errors"].([]interface{})
	require.True(t, ok, "validation errors listed in details")
	assert.Len(t, errs, 3)

	w = do(t, router, http.MethodPost, "/api/products", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/products", map[string]interface{}{"name": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]domain.Product](t, w), "rejected forms never reach storage")
}

func TestProductHandler_ListAndSearch(t *testing.T) {
	router := newTestRouter(storage.NewMemorySlot())

	for _, name := range []string{"milk", "Bread", "butter"} {
		w := do(t, router, http.MethodPost, "/api/products", map[string]interface{}{
			"name": name, "price": 1, "quantity": 1,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	names := func(w *httptest.ResponseRecorder) []string {
		var out []string
		for _, p := range decode[[]domain.Product](t, w) {
			out = append(out, p.Name)
		}
		return out
	}

	w := do(t, router, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Bread", "butter", "milk"}, names(w))

	w = do(t, router, http.MethodGet, "/api/products?q=B", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Bread", "butter"}, names(w))
}

func TestSaleHandler_Checkout(t *testing.T) {
	slot := storage.NewMemorySlot()
	products := repository.NewProductRepository(slot, "products")
	require.NoError(t, products.SaveAll(context.Background(), []domain.Product{
		{ID: "a", Name: "Bread", Price: decimal.NewFromInt(10), Quantity: 2},
		{ID: "b", Name: "Milk", Price: decimal.NewFromInt(5), Quantity: 1},
	}))
	router := newTestRouter(slot)

	w := do(t, router, http.MethodPost, "/api/baskets", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	basket := decode[service.BasketView](t, w)
	base := "/api/baskets/" + basket.ID

	w = do(t, router, http.MethodPost, base+"/sell", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "empty basket cannot be sold")

	for _, id := range []string{"a", "a", "b"} {
		w = do(t, router, http.MethodPost, base+"/items", AddItemRequest{ProductID: id})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	basket = decode[service.BasketView](t, w)
	assert.Equal(t, 3, basket.Totals.Quantity)
	assert.True(t, basket.Totals.Cost.Equal(decimal.NewFromInt(25)))

	w = do(t, router, http.MethodPost, base+"/items", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, base+"/items", AddItemRequest{ProductID: "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPost, base+"/sell", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := decode[domain.Sale](t, w)
	assert.True(t, sale.Totals.Cost.Equal(decimal.NewFromInt(25)))

	w = do(t, router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[service.BasketView](t, w).Lines)

	w = do(t, router, http.MethodGet, "/api/products/b", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[domain.Product](t, w).Quantity)

	// no milk left
	w = do(t, router, http.MethodPost, base+"/items", AddItemRequest{ProductID: "b"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodPost, base+"/sell", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodDelete, base+"/items/b", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodPost, base+"/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/sales", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Sale](t, w), 1)

	w = do(t, router, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dashboard := decode[service.Dashboard](t, w)
	assert.Equal(t, 2, dashboard.Products)
	assert.Equal(t, 1, dashboard.SalesToday)

	w = do(t, router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type unavailableSlot struct{}

func (unavailableSlot) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("medium unavailable")
}

func (unavailableSlot) Put(ctx context.Context, key string, value []byte) error {
	return errors.New("medium unavailable")
}

func (unavailableSlot) Close() error { return nil }

func TestHandlers_StorageFailureIsServiceUnavailable(t *testing.T) {
	router := newTestRouter(unavailableSlot{})

	w := do(t, router, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, router, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Bread", "price": 1, "quantity": 1,
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	response := decode[middleware.ErrorResponse](t, w)
	assert.NotContains(t, response.Error.Message, "medium unavailable")
}
