package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken(testSecret, "user-1", RoleSeller, time.Hour)
	require.NoError(t, err)

	p, err := ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, RoleSeller, p.Role)
}

func TestParseToken_Invalid(t *testing.T) {
	tok, err := GenerateToken(testSecret, "user-1", RoleBuyer, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("wrong-secret", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken(testSecret, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateToken(testSecret, "user-1", RoleBuyer, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func protected(secret string, roles ...Role) http.Handler {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := FromContext(r.Context())
		_, _ = w.Write([]byte(p.ID))
	})
	if len(roles) > 0 {
		h = RequireRole(roles...)(h)
	}
	return Authenticator(secret)(h)
}

func TestAuthenticator(t *testing.T) {
	h := protected(testSecret)

	// no credential
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// bearer header
	tok, err := GenerateToken(testSecret, "buyer-7", RoleBuyer, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "buyer-7", rec.Body.String())

	// cookie
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// garbage token
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	h := protected(testSecret, RoleSeller, RoleAdmin)

	asRole := func(role Role) *httptest.ResponseRecorder {
		tok, err := GenerateToken(testSecret, "u1", role, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, asRole(RoleBuyer).Code)
	assert.Equal(t, http.StatusOK, asRole(RoleSeller).Code)
	assert.Equal(t, http.StatusOK, asRole(RoleAdmin).Code)
}
