package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartController "github.com/Alturino/coffeecart/cart/controller"
	cartResponse "github.com/Alturino/coffeecart/cart/response"
	cartService "github.com/Alturino/coffeecart/cart/service"
	"github.com/Alturino/coffeecart/internal/store"
	"github.com/Alturino/coffeecart/order/response"
	"github.com/Alturino/coffeecart/order/service"
)

type staticCatalog map[uuid.UUID]decimal.Decimal

func (s staticCatalog) GetPrice(_ context.Context, coffeeID uuid.UUID) (decimal.Decimal, bool, error) {
	price, ok := s[coffeeID]
	return price, ok, nil
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	buf := &bytes.Buffer{}
	if body != nil {
		require.NoError(t, json.NewEncoder(buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, buf))

	env := envelope{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func TestCheckoutFlow(t *testing.T) {
	coffeeA, coffeeB := uuid.New(), uuid.New()
	catalog := staticCatalog{
		coffeeA: decimal.RequireFromString("10.00"),
		coffeeB: decimal.RequireFromString("5.00"),
	}
	memoryStore := store.NewMemoryStore()
	carts := cartService.NewCartService(memoryStore, catalog, nil, time.Second)
	checkout := service.NewCheckoutService(memoryStore, nil, carts, decimal.RequireFromString("5.00"), time.Second)

	router := mux.NewRouter()
	cartController.AttachCartController(router, carts, nil)
	AttachOrderController(router, checkout)

	code, env := do(t, router, http.MethodPost, "/carts", nil)
	require.Equal(t, http.StatusCreated, code)
	created := struct {
		Cart cartResponse.Cart `json:"cart"`
	}{}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	cartPath := "/carts/" + created.Cart.ID.String()

	code, _ = do(t, router, http.MethodPost, cartPath+"/checkout", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code, "empty cart")

	code, _ = do(t, router, http.MethodPost, cartPath+"/items", map[string]interface{}{"coffeeId": coffeeA, "quantity": 2})
	require.Equal(t, http.StatusCreated, code)
	code, _ = do(t, router, http.MethodPost, cartPath+"/items", map[string]interface{}{"coffeeId": coffeeB, "quantity": 1})
	require.Equal(t, http.StatusCreated, code)

	code, env = do(t, router, http.MethodPost, cartPath+"/checkout", map[string]interface{}{
		"deliveryAddress": "Av. Paulista 1000",
		"paymentMethod":   "pix",
	})
	require.Equal(t, http.StatusCreated, code)
	placed := struct {
		Order response.Order `json:"order"`
	}{}
	require.NoError(t, json.Unmarshal(env.Data, &placed))
	assert.EqualValues(t, 3, placed.Order.ItemsTotal)
	assert.True(t, placed.Order.ItemsAmount.Equal(decimal.RequireFromString("25.00")))
	assert.True(t, placed.Order.ShippingFee.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, placed.Order.Total.Equal(decimal.RequireFromString("30.00")))
	assert.Equal(t, 2, placed.Order.UniqueProductCount)
	assert.Equal(t, "CREATED", placed.Order.Status)
	assert.Equal(t, "Av. Paulista 1000", placed.Order.DeliveryAddress)

	code, _ = do(t, router, http.MethodPost, cartPath+"/checkout", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = do(t, router, http.MethodPost, cartPath+"/items", map[string]interface{}{"coffeeId": coffeeA, "quantity": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, env = do(t, router, http.MethodGet, "/orders/"+placed.Order.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	found := struct {
		Order response.Order `json:"order"`
	}{}
	require.NoError(t, json.Unmarshal(env.Data, &found))
	assert.Equal(t, placed.Order.ID, found.Order.ID)
	assert.Len(t, found.Order.Items, 2)

	code, env = do(t, router, http.MethodGet, cartPath, nil)
	require.Equal(t, http.StatusOK, code)
	cart := struct {
		Cart cartResponse.Cart `json:"cart"`
	}{}
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Equal(t, "COMPLETED", cart.Cart.Status)
	assert.NotNil(t, cart.Cart.CompletedAt)
}

func TestOrderControllerNotFound(t *testing.T) {
	memoryStore := store.NewMemoryStore()
	checkout := service.NewCheckoutService(memoryStore, nil, nil, decimal.Zero, time.Second)
	router := mux.NewRouter()
	AttachOrderController(router, checkout)

	code, _ := do(t, router, http.MethodGet, "/orders/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, router, http.MethodPost, "/carts/"+uuid.NewString()+"/checkout", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, router, http.MethodGet, "/orders/nope", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
