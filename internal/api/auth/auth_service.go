package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-warehouse-admin/app/observability/metrics"
	"github.com/FACorreiaa/go-warehouse-admin/config"
	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService issues, refreshes and revokes token pairs.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, string, error)
	RefreshSession(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	cfg    *config.Config
}

func NewAuthService(repo AuthRepo, cfg *config.Config, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		cfg:    cfg,
	}
}

// generateAccessToken signs a JWT carrying the user's identity and role.
// The role claim is what lets authorization run without a database hit.
func (s *AuthServiceImpl) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.JWT.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.JWT.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.AccessTokenTTL)),
			Subject:   user.ID.String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// generateRefreshToken creates an opaque random refresh token.
func generateRefreshToken() string {
	return uuid.NewString()
}

// Login authenticates username/password credentials and returns an access
// and refresh token pair.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login", trace.WithAttributes(
		attribute.String("user.username", username),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"), slog.String("username", username))
	metrics.Get().LoginRequestsTotal.Add(ctx, 1)

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		metrics.Get().LoginFailuresTotal.Add(ctx, 1)
		if errors.Is(err, types.ErrNotFound) {
			l.WarnContext(ctx, "Login attempt for unknown user")
			return "", "", types.ErrUnauthenticated
		}
		return "", "", fmt.Errorf("login lookup failed: %w", err)
	}

	if !user.IsActive {
		metrics.Get().LoginFailuresTotal.Add(ctx, 1)
		l.WarnContext(ctx, "Login attempt for inactive user")
		return "", "", types.ErrUnauthenticated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.Get().LoginFailuresTotal.Add(ctx, 1)
		l.WarnContext(ctx, "Password mismatch")
		return "", "", types.ErrUnauthenticated
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", err
	}

	refreshToken := generateRefreshToken()
	expiresAt := time.Now().Add(s.cfg.JWT.RefreshTokenTTL)
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return "", "", err
	}

	l.InfoContext(ctx, "Login successful", slog.String("role", string(user.Role)))
	return accessToken, refreshToken, nil
}

// RefreshSession exchanges a valid refresh token for a new token pair and
// revokes the old refresh token (rotation).
func (s *AuthServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	l := s.logger.With(slog.String("method", "RefreshSession"))

	rec, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return "", "", types.ErrUnauthenticated
		}
		return "", "", err
	}
	if rec.Expired(time.Now()) {
		l.WarnContext(ctx, "Refresh token expired or revoked")
		return "", "", types.ErrUnauthenticated
	}

	user, err := s.repo.GetUserByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return "", "", types.ErrUnauthenticated
		}
		return "", "", err
	}
	if !user.IsActive {
		return "", "", types.ErrUnauthenticated
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", "", err
	}

	newRefreshToken := generateRefreshToken()
	expiresAt := time.Now().Add(s.cfg.JWT.RefreshTokenTTL)
	if err := s.repo.StoreRefreshToken(ctx, user.ID, newRefreshToken, expiresAt); err != nil {
		return "", "", err
	}

	if err := s.repo.InvalidateRefreshToken(ctx, refreshToken); err != nil {
		l.WarnContext(ctx, "Failed to revoke rotated refresh token", slog.Any("error", err))
	}

	return accessToken, newRefreshToken, nil
}

// Logout revokes a refresh token. Access tokens are short lived and expire
// on their own.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.InvalidateRefreshToken(ctx, refreshToken)
}
