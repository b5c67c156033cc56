package inventory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doPost(router http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func TestCheckEndpointReserves(t *testing.T) {
	store := NewStore(map[string]int{"p1": 4})
	router := NewRouter(NewHandler(store))

	rec := doPost(router, "/inventory/check", `{"items":[{"productId":"p1","quantity":3}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp checkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, store.Available("p1"))
}

func TestCheckEndpointOutOfStock(t *testing.T) {
	store := NewStore(map[string]int{"p1": 4})
	router := NewRouter(NewHandler(store))

	rec := doPost(router, "/inventory/check", `{"items":[{"productId":"p1","quantity":9}]}`)
	// Business rejection, still HTTP 200.
	require.Equal(t, http.StatusOK, rec.Code)

	var resp checkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Item out of stock", resp.Message)
	require.NotNil(t, resp.Item)
	assert.Equal(t, "p1", resp.Item.ProductID)
	assert.Equal(t, 4, store.Available("p1"))
}

func TestReleaseEndpointRestores(t *testing.T) {
	store := NewStore(map[string]int{"p1": 4})
	router := NewRouter(NewHandler(store))

	require.Equal(t, http.StatusOK, doPost(router, "/inventory/check", `{"items":[{"productId":"p1","quantity":4}]}`).Code)
	require.Equal(t, 0, store.Available("p1"))

	rec := doPost(router, "/inventory/release", `{"items":[{"productId":"p1","quantity":4}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, store.Available("p1"))
}

func TestCheckEndpointMalformedBody(t *testing.T) {
	router := NewRouter(NewHandler(NewStore(nil)))

	rec := doPost(router, "/inventory/check", `{"items":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
