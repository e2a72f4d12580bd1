package announcement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-warehouse-admin/app/observability/metrics"
	"github.com/FACorreiaa/go-warehouse-admin/internal/authz"
	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

// DefaultRecentLimit caps the dashboard feed when no limit is given.
const DefaultRecentLimit = 5

var _ AnnouncementService = (*AnnouncementServiceImpl)(nil)

// AnnouncementService is the business logic contract for announcements.
// Mutations resolve the current owner first, then consult the authorization
// engine; a deny short-circuits before any write.
type AnnouncementService interface {
	ListAnnouncements(ctx context.Context, caller authz.Caller) ([]types.Announcement, error)
	GetRecentAnnouncements(ctx context.Context, caller authz.Caller, limit int) ([]types.Announcement, error)
	GetAnnouncement(ctx context.Context, caller authz.Caller, id uuid.UUID) (*types.Announcement, error)
	CreateAnnouncement(ctx context.Context, caller authz.Caller, req types.CreateAnnouncementRequest) (*types.Announcement, error)
	UpdateAnnouncement(ctx context.Context, caller authz.Caller, id uuid.UUID, params types.UpdateAnnouncementParams) (*types.Announcement, error)
	ToggleAnnouncementStatus(ctx context.Context, caller authz.Caller, id uuid.UUID) (*types.Announcement, error)
	DeleteAnnouncement(ctx context.Context, caller authz.Caller, id uuid.UUID) error
}

type AnnouncementServiceImpl struct {
	logger *slog.Logger
	repo   AnnouncementRepo
}

func NewAnnouncementService(repo AnnouncementRepo, logger *slog.Logger) *AnnouncementServiceImpl {
	return &AnnouncementServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *AnnouncementServiceImpl) authorize(ctx context.Context, caller authz.Caller, action authz.Action, owner authz.Ownership) error {
	decision := authz.Evaluate(caller, action, authz.ClassAnnouncement, owner)
	metrics.Get().RecordAuthzDecision(ctx, string(decision.Reason))
	if !decision.Allowed {
		return &authz.Denied{Decision: decision}
	}
	return nil
}

func (s *AnnouncementServiceImpl) ListAnnouncements(ctx context.Context, caller authz.Caller) ([]types.Announcement, error) {
	if err := s.authorize(ctx, caller, authz.ActionList, authz.Ownership{}); err != nil {
		return nil, err
	}
	return s.repo.ListAnnouncements(ctx)
}

// GetRecentAnnouncements returns the newest active announcements. A
// non-positive limit falls back to DefaultRecentLimit.
func (s *AnnouncementServiceImpl) GetRecentAnnouncements(ctx context.Context, caller authz.Caller, limit int) ([]types.Announcement, error) {
	if err := s.authorize(ctx, caller, authz.ActionList, authz.Ownership{}); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.repo.GetRecentAnnouncements(ctx, limit)
}

func (s *AnnouncementServiceImpl) GetAnnouncement(ctx context.Context, caller authz.Caller, id uuid.UUID) (*types.Announcement, error) {
	if err := s.authorize(ctx, caller, authz.ActionRead, authz.Ownership{}); err != nil {
		return nil, err
	}
	return s.repo.GetAnnouncementByID(ctx, id)
}

func (s *AnnouncementServiceImpl) CreateAnnouncement(ctx context.Context, caller authz.Caller, req types.CreateAnnouncementRequest) (*types.Announcement, error) {
	ctx, span := otel.Tracer("AnnouncementService").Start(ctx, "CreateAnnouncement", trace.WithAttributes(
		attribute.String("caller.id", caller.ID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateAnnouncement"))

	if err := s.authorize(ctx, caller, authz.ActionCreate, authz.Ownership{}); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", types.ErrValidation)
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", types.ErrValidation)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	// Owner comes from the authenticated caller, never from the payload
	ownerID := caller.ID
	created, err := s.repo.CreateAnnouncement(ctx, &types.Announcement{
		Title:     req.Title,
		Content:   req.Content,
		IsActive:  isActive,
		CreatedBy: &ownerID,
	})
	if err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "Announcement created",
		slog.String("announcement_id", created.ID.String()),
		slog.String("title", created.Title),
	)
	return created, nil
}

func (s *AnnouncementServiceImpl) UpdateAnnouncement(ctx context.Context, caller authz.Caller, id uuid.UUID, params types.UpdateAnnouncementParams) (*types.Announcement, error) {
	l := s.logger.With(slog.String("method", "UpdateAnnouncement"), slog.String("announcementID", id.String()))

	existing, err := s.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, caller, authz.ActionUpdate, authz.OwnerRef(existing.CreatedBy)); err != nil {
		l.WarnContext(ctx, "Announcement update denied", slog.String("caller_id", caller.ID.String()))
		return nil, err
	}

	if params.Title != nil {
		if strings.TrimSpace(*params.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", types.ErrValidation)
		}
		existing.Title = *params.Title
	}
	if params.Content != nil {
		if strings.TrimSpace(*params.Content) == "" {
			return nil, fmt.Errorf("%w: content must not be empty", types.ErrValidation)
		}
		existing.Content = *params.Content
	}
	if params.IsActive != nil {
		existing.IsActive = *params.IsActive
	}

	return s.repo.UpdateAnnouncement(ctx, id, existing)
}

// ToggleAnnouncementStatus flips the active flag. Toggling twice restores
// the original state.
func (s *AnnouncementServiceImpl) ToggleAnnouncementStatus(ctx context.Context, caller authz.Caller, id uuid.UUID) (*types.Announcement, error) {
	l := s.logger.With(slog.String("method", "ToggleAnnouncementStatus"), slog.String("announcementID", id.String()))

	existing, err := s.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, caller, authz.ActionUpdate, authz.OwnerRef(existing.CreatedBy)); err != nil {
		l.WarnContext(ctx, "Announcement toggle denied", slog.String("caller_id", caller.ID.String()))
		return nil, err
	}

	existing.IsActive = !existing.IsActive
	updated, err := s.repo.UpdateAnnouncement(ctx, id, existing)
	if err != nil {
		return nil, err
	}

	l.InfoContext(ctx, "Announcement status toggled", slog.Bool("is_active", updated.IsActive))
	return updated, nil
}

func (s *AnnouncementServiceImpl) DeleteAnnouncement(ctx context.Context, caller authz.Caller, id uuid.UUID) error {
	l := s.logger.With(slog.String("method", "DeleteAnnouncement"), slog.String("announcementID", id.String()))

	existing, err := s.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorize(ctx, caller, authz.ActionDelete, authz.OwnerRef(existing.CreatedBy)); err != nil {
		l.WarnContext(ctx, "Announcement delete denied", slog.String("caller_id", caller.ID.String()))
		return err
	}

	return s.repo.DeleteAnnouncement(ctx, id)
}
