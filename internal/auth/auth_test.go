package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, userID string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseToken(t *testing.T) {
	a := NewAuthenticator("secret")

	token := signToken(t, "secret", "user-1", time.Hour)

	userID, err := a.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = NewAuthenticator("other").ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.ParseToken(signToken(t, "secret", "user-1", -time.Minute))
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"foo": "bar"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = a.ParseToken(noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?token=query", nil)
	r.AddCookie(&http.Cookie{Name: "authToken", Value: "cookie"})
	r.Header.Set("Authorization", "Bearer header")
	assert.Equal(t, "query", TokenFromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "authToken", Value: "cookie"})
	r.Header.Set("Authorization", "Bearer header")
	assert.Equal(t, "cookie", TokenFromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header")
	assert.Equal(t, "header", TokenFromRequest(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, TokenFromRequest(r))
}

func TestMiddleware(t *testing.T) {
	a := NewAuthenticator("secret")

	var gotUserID string
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromCtx(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?token=garbage", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := signToken(t, "secret", "user-1", time.Hour)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?token="+token, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-1", gotUserID)
}
