package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest represents the token obtain request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRequest represents the token refresh request body.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest revokes the given refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Claims is the access token claim set. Role travels inside the token so
// the authorization engine never needs a database round trip.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
