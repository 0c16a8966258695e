package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-erp/meridian-erp/internal/auth"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

type stubRepo struct {
	usersByEmail map[string]*auth.User
	usersByID    map[int64]*auth.User
	nextID       int64
	sessions     map[string]int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		usersByEmail: make(map[string]*auth.User),
		usersByID:    make(map[int64]*auth.User),
		sessions:     make(map[string]int64),
	}
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	user, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (s *stubRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	user, ok := s.usersByID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (s *stubRepo) RegisterBusiness(_ context.Context, businessName string, owner auth.User) (*auth.Business, *auth.User, error) {
	if _, taken := s.usersByEmail[owner.Email]; taken {
		return nil, nil, auth.ErrEmailTaken
	}
	s.nextID++
	business := &auth.Business{ID: s.nextID, Name: businessName}
	s.nextID++
	owner.ID = s.nextID
	owner.BusinessID = business.ID
	owner.IsOwner = true
	owner.IsActive = true
	s.usersByEmail[owner.Email] = &owner
	s.usersByID[owner.ID] = &owner
	return business, &owner, nil
}

func (s *stubRepo) CreateSession(_ context.Context, id string, userID int64, _ time.Time, _, _ string) error {
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *stubRepo) addUser(t *testing.T, email, password string, active bool) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	s.nextID++
	user := &auth.User{
		ID:           s.nextID,
		BusinessID:   1,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     active,
	}
	s.usersByEmail[email] = user
	s.usersByID[user.ID] = user
	return user
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := auth.NewHandler(logger, auth.NewService(repo), sessionManager)
	return handler, sessionManager
}

func doWithSession(t *testing.T, sm *shared.SessionManager, handler http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)
	res := httptest.NewRecorder()
	handler(res, req)
	require.NoError(t, sm.Commit(ctx, res, req, sess))
	return res, sess
}

func handlerForPath(h *auth.Handler, path string) http.HandlerFunc {
	switch {
	case strings.HasSuffix(path, "/register"):
		return h.HandleRegisterForTest
	case strings.HasSuffix(path, "/logout"):
		return h.HandleLogoutForTest
	default:
		return h.HandleLoginForTest
	}
}

func TestLoginSuccessSetsSessionUser(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(t, "owner@test.local", "correctpass", true)
	handler, sm := newAuthHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"owner@test.local","password":"correctpass"}`))
	req.Header.Set("Content-Type", "application/json")

	res, sess := doWithSession(t, sm, handlerForPath(handler, req.URL.Path), req)
	require.Equal(t, http.StatusOK, res.Code)
	require.NotEmpty(t, sess.User())
	require.Contains(t, repo.sessions, sess.ID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(t, "owner@test.local", "correctpass", true)
	handler, sm := newAuthHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"owner@test.local","password":"wrongpass"}`))
	req.Header.Set("Content-Type", "application/json")

	res, sess := doWithSession(t, sm, handlerForPath(handler, req.URL.Path), req)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, sess.User())
}

func TestLoginInactiveUserRejected(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(t, "gone@test.local", "correctpass", false)
	handler, sm := newAuthHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"gone@test.local","password":"correctpass"}`))
	req.Header.Set("Content-Type", "application/json")

	res, _ := doWithSession(t, sm, handlerForPath(handler, req.URL.Path), req)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRegisterBootstrapsOwner(t *testing.T) {
	repo := newStubRepo()
	handler, sm := newAuthHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"business_name":"Meridian Cafe","owner_name":"Dana","email":"dana@test.local","password":"longenough"}`))
	req.Header.Set("Content-Type", "application/json")

	res, sess := doWithSession(t, sm, handlerForPath(handler, req.URL.Path), req)
	require.Equal(t, http.StatusCreated, res.Code)
	require.NotEmpty(t, sess.User())

	owner, err := repo.FindByEmail(context.Background(), "dana@test.local")
	require.NoError(t, err)
	require.True(t, owner.IsOwner)
	require.True(t, owner.IsActive)
	require.NotZero(t, owner.BusinessID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newStubRepo()
	repo.addUser(t, "dana@test.local", "correctpass", true)
	handler, sm := newAuthHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"business_name":"Meridian Cafe","owner_name":"Dana","email":"dana@test.local","password":"longenough"}`))
	req.Header.Set("Content-Type", "application/json")

	res, _ := doWithSession(t, sm, handlerForPath(handler, req.URL.Path), req)
	require.Equal(t, http.StatusConflict, res.Code)
}

func TestRegisterShortPassword(t *testing.T) {
	svc := auth.NewService(newStubRepo())
	_, _, err := svc.Register(context.Background(), "Meridian Cafe", "Dana", "dana@test.local", "short")
	require.ErrorIs(t, err, auth.ErrWeakPassword)
}
