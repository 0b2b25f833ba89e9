package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaryabAli-09/ecommerce-backend/internal/orders"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestWriteError_KnownKinds(t *testing.T) {
	tests := []struct {
		kind orders.ErrKind
		code int
	}{
		{orders.KindValidation, http.StatusBadRequest},
		{orders.KindNotFound, http.StatusNotFound},
		{orders.KindUnauthorized, http.StatusUnauthorized},
		{orders.KindForbidden, http.StatusForbidden},
		{orders.KindInsufficientStock, http.StatusBadRequest},
		{orders.KindPaymentNotCompleted, http.StatusBadRequest},
		{orders.KindConflict, http.StatusConflict},
		{orders.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, &orders.Error{Kind: tt.kind, Message: "boom"})
		assert.Equal(t, tt.code, rec.Code)

		env := decode(t, rec)
		assert.Equal(t, tt.code, env.Status)
		assert.Nil(t, env.Data)
		assert.Equal(t, "boom", env.Message)
	}
}

func TestWriteError_UnknownErrorIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "internal server error", env.Message, "internal detail must not leak")
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	writeData(rec, http.StatusCreated, map[string]string{"id": "o1"}, "order placed")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	env := decode(t, rec)
	assert.Equal(t, http.StatusCreated, env.Status)
	assert.Equal(t, "order placed", env.Message)
}
