package announcement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

var _ AnnouncementRepo = (*PostgresAnnouncementRepo)(nil)

// AnnouncementRepo is the persistence contract for announcements.
type AnnouncementRepo interface {
	ListAnnouncements(ctx context.Context) ([]types.Announcement, error)
	GetRecentAnnouncements(ctx context.Context, limit int) ([]types.Announcement, error)
	GetAnnouncementByID(ctx context.Context, id uuid.UUID) (*types.Announcement, error)
	CreateAnnouncement(ctx context.Context, a *types.Announcement) (*types.Announcement, error)
	UpdateAnnouncement(ctx context.Context, id uuid.UUID, a *types.Announcement) (*types.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id uuid.UUID) error
}

// PgxPool is the subset of pgxpool.Pool the repository needs; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresAnnouncementRepo struct {
	logger *slog.Logger
	pgpool PgxPool
}

func NewPostgresAnnouncementRepo(pgpool PgxPool, logger *slog.Logger) *PostgresAnnouncementRepo {
	return &PostgresAnnouncementRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const announcementQuery = `
	SELECT a.id, a.title, a.content, a.is_active, a.created_at, a.updated_at,
	       a.created_by, u.username
	FROM announcements a
	LEFT JOIN users u ON u.id = a.created_by`

func scanAnnouncementRows(rows pgx.Rows) ([]types.Announcement, error) {
	defer rows.Close()
	announcements := []types.Announcement{}
	for rows.Next() {
		var a types.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.IsActive,
			&a.CreatedAt, &a.UpdatedAt, &a.CreatedBy, &a.CreatedByUsername); err != nil {
			return nil, fmt.Errorf("scan announcement row: %w", err)
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

func (r *PostgresAnnouncementRepo) ListAnnouncements(ctx context.Context) ([]types.Announcement, error) {
	rows, err := r.pgpool.Query(ctx, announcementQuery+" ORDER BY a.created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return scanAnnouncementRows(rows)
}

func (r *PostgresAnnouncementRepo) GetRecentAnnouncements(ctx context.Context, limit int) ([]types.Announcement, error) {
	rows, err := r.pgpool.Query(ctx,
		announcementQuery+" WHERE a.is_active = TRUE ORDER BY a.created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("recent announcements: %w", err)
	}
	return scanAnnouncementRows(rows)
}

func (r *PostgresAnnouncementRepo) GetAnnouncementByID(ctx context.Context, id uuid.UUID) (*types.Announcement, error) {
	var a types.Announcement
	err := r.pgpool.QueryRow(ctx, announcementQuery+" WHERE a.id = $1", id).
		Scan(&a.ID, &a.Title, &a.Content, &a.IsActive,
			&a.CreatedAt, &a.UpdatedAt, &a.CreatedBy, &a.CreatedByUsername)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return &a, nil
}

func (r *PostgresAnnouncementRepo) CreateAnnouncement(ctx context.Context, a *types.Announcement) (*types.Announcement, error) {
	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO announcements (title, content, is_active, created_by)
         VALUES ($1, $2, $3, $4)
         RETURNING id`,
		a.Title, a.Content, a.IsActive, a.CreatedBy).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}
	return r.GetAnnouncementByID(ctx, id)
}

func (r *PostgresAnnouncementRepo) UpdateAnnouncement(ctx context.Context, id uuid.UUID, a *types.Announcement) (*types.Announcement, error) {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE announcements SET title = $1, content = $2, is_active = $3, updated_at = $4
         WHERE id = $5`,
		a.Title, a.Content, a.IsActive, time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("update announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, types.ErrNotFound
	}
	return r.GetAnnouncementByID(ctx, id)
}

func (r *PostgresAnnouncementRepo) DeleteAnnouncement(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM announcements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
