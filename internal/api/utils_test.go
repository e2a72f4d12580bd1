package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-warehouse-admin/internal/authz"
	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

func decode(t *testing.T, body string, dst interface{}) error {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	return DecodeJSONBody(w, r, dst)
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("ValidBody", func(t *testing.T) {
		var p payload
		require.NoError(t, decode(t, `{"name":"ok"}`, &p))
		assert.Equal(t, "ok", p.Name)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		var p payload
		err := decode(t, "", &p)
		assert.EqualError(t, err, "body must not be empty")
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		var p payload
		err := decode(t, `{"name":`, &p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "badly-formed JSON")
	})

	t.Run("UnknownField", func(t *testing.T) {
		var p payload
		err := decode(t, `{"name":"ok","extra":1}`, &p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown key "extra"`)
	})

	t.Run("WrongFieldType", func(t *testing.T) {
		var p payload
		err := decode(t, `{"name":42}`, &p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `incorrect JSON type for field "name"`)
	})

	t.Run("TrailingData", func(t *testing.T) {
		var p payload
		err := decode(t, `{"name":"ok"}{"name":"again"}`, &p)
		assert.EqualError(t, err, "body must only contain a single JSON value")
	})
}

func TestServiceErrorResponse(t *testing.T) {
	logger := slog.Default()

	run := func(err error) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		ServiceErrorResponse(w, r, logger, err)
		return w
	}

	t.Run("DeniedCarriesReasonStatus", func(t *testing.T) {
		w := run(&authz.Denied{Decision: authz.Decision{Reason: authz.ReasonNotOwner}})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), string(authz.ReasonNotOwner))
	})

	t.Run("DeniedUnauthenticated", func(t *testing.T) {
		w := run(&authz.Denied{Decision: authz.Decision{Reason: authz.ReasonUnauthenticated}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		w := run(types.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Conflict", func(t *testing.T) {
		w := run(types.ErrConflict)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("WrappedValidation", func(t *testing.T) {
		w := run(fmt.Errorf("%w: city is required", types.ErrValidation))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "city is required")
	})

	t.Run("UnknownErrorIs500", func(t *testing.T) {
		w := run(fmt.Errorf("connection reset"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestVerifyAudience(t *testing.T) {
	aud := jwt.ClaimStrings{"warehouse-admin-api"}
	assert.True(t, VerifyAudience(aud, "warehouse-admin-api"))
	assert.True(t, VerifyAudience(aud, ""))
	assert.False(t, VerifyAudience(aud, "other-api"))
	assert.False(t, VerifyAudience(nil, "warehouse-admin-api"))
}
