package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-hq/inkwell/internal/domain"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/auth"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
)

type fakeUserRepository struct {
	mu     sync.Mutex
	users  map[string]domain.User // by id
	nextID int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]domain.User)}
}

func (f *fakeUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}

	f.nextID++
	stored := *user
	stored.ID = fmt.Sprintf("%024x", f.nextID)
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	f.users[stored.ID] = stored

	return &stored, nil
}

func (f *fakeUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUserRepository) UpdateRefreshToken(ctx context.Context, id, refreshTokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshTokenHash = refreshTokenHash
	f.users[id] = u
	return nil
}

func (f *fakeUserRepository) EnsureIndexes(ctx context.Context) error { return nil }

func newTestRouter() *chi.Mux {
	tokens := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "inkwell-test",
	})

	h := NewHandler(newFakeUserRepository(), tokens, auth.NewPasswordHasher(), logging.NewNopLogger())

	r := chi.NewRouter()
	r.Post("/auth/register", h.RegisterHandler)
	r.Post("/auth/login", h.LoginHandler)
	r.Post("/auth/refresh", h.RefreshHandler)
	return r
}

type authEnvelope struct {
	Data  *authResponse `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, router http.Handler, path, body string) (*httptest.ResponseRecorder, authEnvelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env authEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func register(t *testing.T, router http.Handler, email string) *authResponse {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"password":"s3cret-password","name":"Ada"}`, email)
	rec, env := doRequest(t, router, "/auth/register", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, env.Data)
	return env.Data
}

func TestRegisterHandler(t *testing.T) {
	router := newTestRouter()

	t.Run("returns user and token pair", func(t *testing.T) {
		resp := register(t, router, "ada@example.com")

		require.Equal(t, "ada@example.com", resp.User.Email)
		require.NotEmpty(t, resp.User.ID)
		require.NotEmpty(t, resp.Tokens.AccessToken)
		require.NotEmpty(t, resp.Tokens.RefreshToken)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec, env := doRequest(t, router, "/auth/register", `{"email":"ada@example.com","password":"s3cret-password"}`)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, "Email already in use", env.Error.Message)
	})

	t.Run("rejects short password", func(t *testing.T) {
		rec, _ := doRequest(t, router, "/auth/register", `{"email":"bob@example.com","password":"short"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		rec, _ := doRequest(t, router, "/auth/register", `{"email":"not-an-email","password":"s3cret-password"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginHandler(t *testing.T) {
	router := newTestRouter()
	register(t, router, "ada@example.com")

	t.Run("valid credentials", func(t *testing.T) {
		rec, env := doRequest(t, router, "/auth/login", `{"email":"ada@example.com","password":"s3cret-password"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, env.Data.Tokens.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec, env := doRequest(t, router, "/auth/login", `{"email":"ada@example.com","password":"wrong-password"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid credentials", env.Error.Message)
	})

	t.Run("unknown email reads the same as wrong password", func(t *testing.T) {
		rec, env := doRequest(t, router, "/auth/login", `{"email":"ghost@example.com","password":"s3cret-password"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Invalid credentials", env.Error.Message)
	})
}

func TestRefreshHandler(t *testing.T) {
	router := newTestRouter()

	t.Run("rotates the token pair", func(t *testing.T) {
		initial := register(t, router, "ada@example.com")

		// token claims carry second-resolution timestamps; without this
		// the rotated token would be byte-identical to the original
		time.Sleep(1100 * time.Millisecond)

		body := fmt.Sprintf(`{"refreshToken":%q}`, initial.Tokens.RefreshToken)
		rec, env := doRequest(t, router, "/auth/refresh", body)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, env.Data.Tokens.RefreshToken)

		// the rotated-out token is single use
		rec, envReplay := doRequest(t, router, "/auth/refresh", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid refresh token", envReplay.Error.Message)

		// the fresh one still works
		body = fmt.Sprintf(`{"refreshToken":%q}`, env.Data.Tokens.RefreshToken)
		rec, _ = doRequest(t, router, "/auth/refresh", body)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("access token is not accepted", func(t *testing.T) {
		initial := register(t, router, "bob@example.com")

		body := fmt.Sprintf(`{"refreshToken":%q}`, initial.Tokens.AccessToken)
		rec, _ := doRequest(t, router, "/auth/refresh", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec, _ := doRequest(t, router, "/auth/refresh", `{"refreshToken":"garbage"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
