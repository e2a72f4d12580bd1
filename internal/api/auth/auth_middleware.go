package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-warehouse-admin/config"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api"
	"github.com/FACorreiaa/go-warehouse-admin/internal/authz"
	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

type contextKey string

const callerKey contextKey = "caller"

// CallerFromContext returns the authenticated caller resolved by the
// Authenticate middleware.
func CallerFromContext(ctx context.Context) (authz.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(authz.Caller)
	return caller, ok
}

// ContextWithCaller is exported for handler tests.
func ContextWithCaller(ctx context.Context, caller authz.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// callerCacheTTL bounds how long a resolved identity may be served without
// re-verifying the token signature.
const callerCacheTTL = 1 * time.Minute

// Authenticate validates the bearer token and places the resolved caller
// identity in the request context. Resolved identities are cached per token
// so hot clients skip signature verification; each entry lives for at most
// callerCacheTTL and never past the token's own expiry.
func Authenticate(logger *slog.Logger, jwtCfg config.JWTConfig) func(next http.Handler) http.Handler {
	secretKey := []byte(jwtCfg.SecretKey)
	if len(secretKey) == 0 {
		panic("JWT secret key cannot be empty")
	}

	callerCache := cache.New(callerCacheTTL, 5*time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}
			tokenString := headerParts[1]

			if cached, found := callerCache.Get(tokenString); found {
				next.ServeHTTP(w, r.WithContext(ContextWithCaller(ctx, cached.(authz.Caller))))
				return
			}

			caller, expiresAt, err := resolveCaller(tokenString, secretKey, jwtCfg)
			if err != nil {
				l.WarnContext(ctx, "Token validation failed", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, authErrorMessage(err))
				return
			}

			// An entry must not outlive the token it stands for
			ttl := time.Until(expiresAt)
			if ttl > callerCacheTTL {
				ttl = callerCacheTTL
			}
			if ttl > 0 {
				callerCache.Set(tokenString, caller, ttl)
			}
			next.ServeHTTP(w, r.WithContext(ContextWithCaller(ctx, caller)))
		})
	}
}

// resolveCaller parses and validates the access token, returning the caller
// identity it binds and the token expiry. Any failure leaves the request
// unauthenticated.
func resolveCaller(tokenString string, secretKey []byte, jwtCfg config.JWTConfig) (authz.Caller, time.Time, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return authz.Caller{}, time.Time{}, err
	}
	if !token.Valid {
		return authz.Caller{}, time.Time{}, jwt.ErrTokenUnverifiable
	}

	if claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		return authz.Caller{}, time.Time{}, jwt.ErrTokenExpired
	}
	if claims.Issuer != jwtCfg.Issuer {
		return authz.Caller{}, time.Time{}, fmt.Errorf("invalid token issuer %q", claims.Issuer)
	}
	if jwtCfg.Audience != "" && !api.VerifyAudience(claims.Audience, jwtCfg.Audience) {
		return authz.Caller{}, time.Time{}, fmt.Errorf("invalid token audience")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return authz.Caller{}, time.Time{}, fmt.Errorf("malformed user_id claim: %w", err)
	}

	caller := authz.Caller{
		ID:            userID,
		Role:          authz.Role(claims.Role),
		Authenticated: true,
	}
	return caller, claims.ExpiresAt.Time, nil
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "Malformed token"
	case errors.Is(err, jwt.ErrSignatureInvalid):
		return "Invalid token signature"
	}
	return "Invalid or expired token"
}
