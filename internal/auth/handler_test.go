package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doLogin(body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	NewRouter().ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	rec := doLogin(`{"username":"user123","password":"password"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "mock-token", resp.Token)
}

func TestLoginInvalidCredentials(t *testing.T) {
	rec := doLogin(`{"username":"user123","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginMissingFields(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, doLogin(`{"password":"password"}`).Code)
	assert.Equal(t, http.StatusBadRequest, doLogin(`{"username":"user123"}`).Code)
}
