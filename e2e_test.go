package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-warehouse-admin/app/observability/metrics"
	"github.com/FACorreiaa/go-warehouse-admin/config"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/announcement"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/auth"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/user"
	"github.com/FACorreiaa/go-warehouse-admin/internal/api/warehouse"
	"github.com/FACorreiaa/go-warehouse-admin/internal/authz"
	"github.com/FACorreiaa/go-warehouse-admin/internal/router"
	"github.com/FACorreiaa/go-warehouse-admin/internal/types"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	os.Exit(m.Run())
}

// --- In-memory repositories ---
// The E2E suite runs the real router, middleware and services against
// map-backed stores, so the full request path is exercised without Postgres.

type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*types.User
	refreshTokens map[string]*auth.RefreshTokenRecord
	warehouses    map[uuid.UUID]*types.Warehouse
	announcements map[uuid.UUID]*types.Announcement
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]*types.User{},
		refreshTokens: map[string]*auth.RefreshTokenRecord{},
		warehouses:    map[uuid.UUID]*types.Warehouse{},
		announcements: map[uuid.UUID]*types.Announcement{},
	}
}

func (s *memStore) seedUser(username string, role authz.Role, password string) *types.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u := &types.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.users[u.ID] = u
	return u
}

type memAuthRepo struct{ store *memStore }

func (r *memAuthRepo) GetUserByUsername(_ context.Context, username string) (*types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, types.ErrNotFound
}

func (r *memAuthRepo) GetUserByID(_ context.Context, userID uuid.UUID) (*types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[userID]
	if !ok {
		return nil, types.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memAuthRepo) StoreRefreshToken(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.refreshTokens[token] = &auth.RefreshTokenRecord{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (r *memAuthRepo) GetRefreshToken(_ context.Context, token string) (*auth.RefreshTokenRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.refreshTokens[token]
	if !ok {
		return nil, types.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memAuthRepo) InvalidateRefreshToken(_ context.Context, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rec, ok := r.store.refreshTokens[token]; ok {
		now := time.Now()
		rec.RevokedAt = &now
	}
	return nil
}

func (r *memAuthRepo) InvalidateAllUserRefreshTokens(_ context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now()
	for _, rec := range r.store.refreshTokens {
		if rec.UserID == userID {
			rec.RevokedAt = &now
		}
	}
	return nil
}

type memUserRepo struct{ store *memStore }

func (r *memUserRepo) ListUsers(_ context.Context) ([]types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	users := []types.User{}
	for _, u := range r.store.users {
		users = append(users, *u)
	}
	return users, nil
}

func (r *memUserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return (&memAuthRepo{store: r.store}).GetUserByID(ctx, userID)
}

func (r *memUserRepo) CreateUser(_ context.Context, u *types.User) (*types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, types.ErrConflict
		}
	}
	cp := *u
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = time.Now()
	r.store.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memUserRepo) UpdateUser(_ context.Context, userID uuid.UUID, u *types.User) (*types.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[userID]; !ok {
		return nil, types.ErrNotFound
	}
	cp := *u
	cp.ID = userID
	cp.UpdatedAt = time.Now()
	r.store.users[userID] = &cp
	out := cp
	return &out, nil
}

func (r *memUserRepo) DeleteUser(_ context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[userID]; !ok {
		return types.ErrNotFound
	}
	delete(r.store.users, userID)
	return nil
}

type memWarehouseRepo struct{ store *memStore }

func (r *memWarehouseRepo) ListWarehouses(_ context.Context) ([]types.Warehouse, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	warehouses := []types.Warehouse{}
	for _, w := range r.store.warehouses {
		warehouses = append(warehouses, *w)
	}
	sort.Slice(warehouses, func(i, j int) bool {
		return warehouses[i].CreatedAt.After(warehouses[j].CreatedAt)
	})
	return warehouses, nil
}

func (r *memWarehouseRepo) CountWarehouses(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.warehouses)), nil
}

func (r *memWarehouseRepo) GetWarehouseByID(_ context.Context, id uuid.UUID) (*types.Warehouse, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.warehouses[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *memWarehouseRepo) CreateWarehouse(_ context.Context, w *types.Warehouse) (*types.Warehouse, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *w
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = time.Now()
	r.store.warehouses[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memWarehouseRepo) UpdateWarehouse(_ context.Context, id uuid.UUID, w *types.Warehouse) (*types.Warehouse, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.warehouses[id]; !ok {
		return nil, types.ErrNotFound
	}
	cp := *w
	cp.ID = id
	cp.UpdatedAt = time.Now()
	r.store.warehouses[id] = &cp
	out := cp
	return &out, nil
}

func (r *memWarehouseRepo) DeleteWarehouse(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.warehouses[id]; !ok {
		return types.ErrNotFound
	}
	delete(r.store.warehouses, id)
	return nil
}

type memAnnouncementRepo struct{ store *memStore }

func (r *memAnnouncementRepo) sorted() []types.Announcement {
	announcements := []types.Announcement{}
	for _, a := range r.store.announcements {
		announcements = append(announcements, *a)
	}
	sort.Slice(announcements, func(i, j int) bool {
		return announcements[i].CreatedAt.After(announcements[j].CreatedAt)
	})
	return announcements
}

func (r *memAnnouncementRepo) ListAnnouncements(_ context.Context) ([]types.Announcement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.sorted(), nil
}

func (r *memAnnouncementRepo) GetRecentAnnouncements(_ context.Context, limit int) ([]types.Announcement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	recent := []types.Announcement{}
	for _, a := range r.sorted() {
		if !a.IsActive {
			continue
		}
		recent = append(recent, a)
		if len(recent) == limit {
			break
		}
	}
	return recent, nil
}

func (r *memAnnouncementRepo) GetAnnouncementByID(_ context.Context, id uuid.UUID) (*types.Announcement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.announcements[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAnnouncementRepo) CreateAnnouncement(_ context.Context, a *types.Announcement) (*types.Announcement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *a
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = time.Now()
	r.store.announcements[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memAnnouncementRepo) UpdateAnnouncement(_ context.Context, id uuid.UUID, a *types.Announcement) (*types.Announcement, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.announcements[id]; !ok {
		return nil, types.ErrNotFound
	}
	cp := *a
	cp.ID = id
	cp.UpdatedAt = time.Now()
	r.store.announcements[id] = &cp
	out := cp
	return &out, nil
}

func (r *memAnnouncementRepo) DeleteAnnouncement(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.announcements[id]; !ok {
		return types.ErrNotFound
	}
	delete(r.store.announcements, id)
	return nil
}

// --- Suite ---

type E2ETestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
	store  *memStore

	adminToken     string
	supportToken   string
	warehouseToken string
}

func e2eConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{
		SecretKey:       "e2e-test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "go-warehouse-admin",
		Audience:        "warehouse-admin-api",
	}
	return cfg
}

func (s *E2ETestSuite) SetupSuite() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg := e2eConfig()

	s.store = newMemStore()
	s.store.seedUser("admin", authz.RolePlatformAdmin, "admin123")
	s.store.seedUser("support", authz.RoleSupportStaff, "support123")
	s.store.seedUser("warehouse", authz.RoleWarehouseAdmin, "warehouse123")

	authService := auth.NewAuthService(&memAuthRepo{store: s.store}, cfg, logger)
	userService := user.NewUserService(&memUserRepo{store: s.store}, &memAuthRepo{store: s.store}, logger)
	warehouseService := warehouse.NewWarehouseService(&memWarehouseRepo{store: s.store}, logger)
	announcementService := announcement.NewAnnouncementService(&memAnnouncementRepo{store: s.store}, logger)

	mux := router.SetupRouter(&router.Config{
		AuthHandler:            auth.NewHandlerImpl(authService, logger),
		UserHandler:            user.NewHandlerImpl(userService, logger),
		WarehouseHandler:       warehouse.NewHandlerImpl(warehouseService, logger),
		AnnouncementHandler:    announcement.NewHandlerImpl(announcementService, logger),
		AuthenticateMiddleware: auth.Authenticate(logger, cfg.JWT),
	})

	s.server = httptest.NewServer(mux)
	s.client = &http.Client{Timeout: 10 * time.Second}

	s.adminToken = s.login("admin", "admin123")
	s.supportToken = s.login("support", "support123")
	s.warehouseToken = s.login("warehouse", "warehouse123")
}

func (s *E2ETestSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
}

func (s *E2ETestSuite) login(username, password string) string {
	resp := s.do(http.MethodPost, "/api/v1/token", "", types.LoginRequest{Username: username, Password: password})
	defer resp.Body.Close()
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var tokens types.TokenResponse
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&tokens))
	require.NotEmpty(s.T(), tokens.AccessToken)
	return tokens.AccessToken
}

func (s *E2ETestSuite) do(method, path, token string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.client.Do(req)
	require.NoError(s.T(), err)
	return resp
}

func decodeBody[T any](s *E2ETestSuite, resp *http.Response) T {
	defer resp.Body.Close()
	var out T
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *E2ETestSuite) TestUnauthenticatedRequestsRejected() {
	resp := s.do(http.MethodGet, "/api/v1/warehouses", "", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *E2ETestSuite) TestLoginRejectsBadPassword() {
	resp := s.do(http.MethodPost, "/api/v1/token", "", types.LoginRequest{Username: "admin", Password: "wrong"})
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *E2ETestSuite) TestRefreshRotatesToken() {
	resp := s.do(http.MethodPost, "/api/v1/token", "", types.LoginRequest{Username: "support", Password: "support123"})
	tokens := decodeBody[types.TokenResponse](s, resp)

	resp = s.do(http.MethodPost, "/api/v1/token/refresh", "", types.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	rotated := decodeBody[types.TokenResponse](s, resp)
	s.NotEqual(tokens.RefreshToken, rotated.RefreshToken)

	// the old refresh token is dead after rotation
	resp = s.do(http.MethodPost, "/api/v1/token/refresh", "", types.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *E2ETestSuite) TestWarehouseOwnershipLifecycle() {
	// the warehouse admin creates a warehouse and becomes its owner
	resp := s.do(http.MethodPost, "/api/v1/warehouses", s.warehouseToken, types.CreateWarehouseRequest{
		City:      "Lisbon",
		Latitude:  38.7223,
		Longitude: -9.1393,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	created := decodeBody[types.Warehouse](s, resp)

	// everyone with an admin role can read it
	resp = s.do(http.MethodGet, fmt.Sprintf("/api/v1/warehouses/%s", created.ID), s.supportToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// support staff is not the owner and cannot delete it
	resp = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/warehouses/%s", created.ID), s.supportToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusForbidden, resp.StatusCode)

	// support staff cannot update it either
	city := "Porto"
	resp = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/warehouses/%s", created.ID), s.supportToken, types.UpdateWarehouseParams{City: &city})
	resp.Body.Close()
	s.Equal(http.StatusForbidden, resp.StatusCode)

	// the platform admin may update any record
	resp = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/warehouses/%s", created.ID), s.adminToken, types.UpdateWarehouseParams{City: &city})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// the owner deletes their warehouse
	resp = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/warehouses/%s", created.ID), s.warehouseToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)
}

func (s *E2ETestSuite) TestAnnouncementRecentAndToggle() {
	resp := s.do(http.MethodPost, "/api/v1/announcements", s.supportToken, types.CreateAnnouncementRequest{
		Title:   "Maintenance window",
		Content: "Saturday 02:00-04:00 UTC.",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	created := decodeBody[types.Announcement](s, resp)
	s.True(created.IsActive)

	// active announcements show up in the recent feed
	resp = s.do(http.MethodGet, "/api/v1/announcements/recent?limit=10", s.warehouseToken, nil)
	recent := decodeBody[[]types.Announcement](s, resp)
	s.NotEmpty(recent)

	// the owner toggles it off; it disappears from the feed
	resp = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/announcements/%s/toggle-status", created.ID), s.supportToken, nil)
	toggled := decodeBody[types.Announcement](s, resp)
	s.False(toggled.IsActive)

	resp = s.do(http.MethodGet, "/api/v1/announcements/recent?limit=10", s.warehouseToken, nil)
	recent = decodeBody[[]types.Announcement](s, resp)
	for _, a := range recent {
		s.NotEqual(created.ID, a.ID)
	}

	// a non-owner cannot toggle it back
	resp = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/announcements/%s/toggle-status", created.ID), s.warehouseToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *E2ETestSuite) TestUserManagementRestrictedToPlatformAdmin() {
	resp := s.do(http.MethodGet, "/api/v1/users", s.supportToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusForbidden, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/v1/users", s.adminToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// but every authenticated user can see their own profile
	resp = s.do(http.MethodGet, "/api/v1/users/me", s.supportToken, nil)
	me := decodeBody[types.User](s, resp)
	s.Equal("support", me.Username)
}

func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
