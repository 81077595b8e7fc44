package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sharetube/roomy/pkg/ctxlogger"
	"github.com/sharetube/roomy/pkg/rest"
)

const (
	tokenQueryParam = "token"
	tokenCookieName = "authToken"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid token")
)

type contextKey int

const userIDCtxKey contextKey = iota

type authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *authenticator {
	return &authenticator{secret: []byte(secret)}
}

// ParseToken returns the user id carried in the token subject.
func (a authenticator) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID, err := token.Claims.GetSubject()
	if err != nil || userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}

// TokenFromRequest looks at the token query param, then the authToken cookie,
// then the Authorization header. Browsers cannot set headers on websocket upgrades.
func TokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get(tokenQueryParam); token != "" {
		return token
	}

	if cookie, err := r.Cookie(tokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ""
}

// Middleware rejects requests without a valid token and stores the user id in the request context.
func (a authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := TokenFromRequest(r)
		if tokenString == "" {
			rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": ErrUnauthenticated.Error()})
			return
		}

		userID, err := a.ParseToken(tokenString)
		if err != nil {
			slog.InfoContext(r.Context(), "failed to parse token", "error", err)
			rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": ErrInvalidToken.Error()})
			return
		}

		ctx := context.WithValue(r.Context(), userIDCtxKey, userID)
		ctx = ctxlogger.AppendCtx(ctx, slog.String("user_id", userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromCtx(ctx context.Context) string {
	userID, ok := ctx.Value(userIDCtxKey).(string)
	if !ok {
		return ""
	}

	return userID
}
