package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-warehouse-admin/app/observability/metrics"
	"github.com/FACorreiaa/go-warehouse-admin/internal/authz"
	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

var _ UserService = (*UserServiceImpl)(nil)

// UserService is the business logic contract for user management. Every
// operation except GetCurrentUser goes through the authorization engine
// before any storage access; a deny returns *authz.Denied untouched.
type UserService interface {
	GetCurrentUser(ctx context.Context, callerID uuid.UUID) (*types.User, error)
	ListUsers(ctx context.Context, caller authz.Caller) ([]types.User, error)
	GetUser(ctx context.Context, caller authz.Caller, userID uuid.UUID) (*types.User, error)
	CreateUser(ctx context.Context, caller authz.Caller, req types.CreateUserRequest) (*types.User, error)
	UpdateUser(ctx context.Context, caller authz.Caller, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error)
	DeleteUser(ctx context.Context, caller authz.Caller, userID uuid.UUID) error
}

// SessionRevoker revokes every refresh token held by a user. The auth
// repository satisfies it; the user service calls it when an account is
// deleted or deactivated so stale sessions cannot outlive the account.
type SessionRevoker interface {
	InvalidateAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

type UserServiceImpl struct {
	logger   *slog.Logger
	repo     UserRepo
	sessions SessionRevoker
}

func NewUserService(repo UserRepo, sessions SessionRevoker, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger:   logger,
		repo:     repo,
		sessions: sessions,
	}
}

// revokeSessions kills all refresh tokens for a user. Failures are logged
// but never fail the surrounding operation: the account change already
// happened and access tokens expire on their own.
func (s *UserServiceImpl) revokeSessions(ctx context.Context, l *slog.Logger, userID uuid.UUID) {
	if err := s.sessions.InvalidateAllUserRefreshTokens(ctx, userID); err != nil {
		l.WarnContext(ctx, "Failed to revoke user sessions", slog.Any("error", err))
	}
}

// authorize evaluates the engine for the user resource class and records
// the decision. User operations never need ownership context.
func (s *UserServiceImpl) authorize(ctx context.Context, caller authz.Caller, action authz.Action) error {
	decision := authz.Evaluate(caller, action, authz.ClassUser, authz.Ownership{})
	metrics.Get().RecordAuthzDecision(ctx, string(decision.Reason))
	if !decision.Allowed {
		return &authz.Denied{Decision: decision}
	}
	return nil
}

// GetCurrentUser serves the caller's own record. This is the "self" lookup
// outside the authorization engine: the middleware already proved identity
// and no role check applies.
func (s *UserServiceImpl) GetCurrentUser(ctx context.Context, callerID uuid.UUID) (*types.User, error) {
	return s.repo.GetUserByID(ctx, callerID)
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, caller authz.Caller) ([]types.User, error) {
	if err := s.authorize(ctx, caller, authz.ActionList); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx)
}

func (s *UserServiceImpl) GetUser(ctx context.Context, caller authz.Caller, userID uuid.UUID) (*types.User, error) {
	if err := s.authorize(ctx, caller, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, userID)
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, caller authz.Caller, req types.CreateUserRequest) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "CreateUser", trace.WithAttributes(
		attribute.String("caller.id", caller.ID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateUser"))

	if err := s.authorize(ctx, caller, authz.ActionCreate); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", types.ErrValidation)
	}

	role := authz.RoleWarehouseAdmin
	if req.Role != "" {
		parsed, ok := authz.ParseRole(req.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", types.ErrValidation, req.Role)
		}
		role = parsed
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.repo.CreateUser(ctx, &types.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashed),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "User created",
		slog.String("user_id", created.ID.String()),
		slog.String("role", string(created.Role)),
	)
	return created, nil
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, caller authz.Caller, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error) {
	l := s.logger.With(slog.String("method", "UpdateUser"), slog.String("userID", userID.String()))

	if err := s.authorize(ctx, caller, authz.ActionUpdate); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	wasActive := existing.IsActive

	if params.Username != nil {
		existing.Username = *params.Username
	}
	if params.Email != nil {
		existing.Email = *params.Email
	}
	if params.FirstName != nil {
		existing.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		existing.LastName = *params.LastName
	}
	if params.IsActive != nil {
		existing.IsActive = *params.IsActive
	}
	if params.Role != nil {
		parsed, ok := authz.ParseRole(*params.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", types.ErrValidation, *params.Role)
		}
		existing.Role = parsed
	}
	if params.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		existing.PasswordHash = string(hashed)
	}

	updated, err := s.repo.UpdateUser(ctx, userID, existing)
	if err != nil {
		return nil, err
	}

	if wasActive && !updated.IsActive {
		s.revokeSessions(ctx, l, userID)
	}

	l.InfoContext(ctx, "User updated")
	return updated, nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, caller authz.Caller, userID uuid.UUID) error {
	l := s.logger.With(slog.String("method", "DeleteUser"), slog.String("userID", userID.String()))

	if err := s.authorize(ctx, caller, authz.ActionDelete); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.revokeSessions(ctx, l, userID)
	return nil
}
