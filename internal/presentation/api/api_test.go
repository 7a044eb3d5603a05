package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-hq/inkwell/internal/domain"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/auth"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/configs"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/events"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/ratelimiter"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/realtime"
	authHandler "github.com/inkwell-hq/inkwell/internal/presentation/handler/auth"
	commentsHandler "github.com/inkwell-hq/inkwell/internal/presentation/handler/comments"
	designsHandler "github.com/inkwell-hq/inkwell/internal/presentation/handler/designs"
	healthHandler "github.com/inkwell-hq/inkwell/internal/presentation/handler/health"
)

type stubDesignRepository struct {
	designs map[string]*domain.Design
	nextID  int
}

func newStubDesignRepository() *stubDesignRepository {
	return &stubDesignRepository{designs: map[string]*domain.Design{}}
}

func (r *stubDesignRepository) Create(_ context.Context, design *domain.Design) (*domain.Design, error) {
	r.nextID++
	design.ID = fmt.Sprintf("%024x", r.nextID)
	r.designs[design.ID] = design
	return design, nil
}

func (r *stubDesignRepository) FindAll(_ context.Context, _ domain.FindOptions) ([]domain.Design, error) {
	out := make([]domain.Design, 0, len(r.designs))
	for _, d := range r.designs {
		out = append(out, *d)
	}
	return out, nil
}

func (r *stubDesignRepository) FindByID(_ context.Context, id string) (*domain.Design, error) {
	d, ok := r.designs[id]
	if !ok {
		return nil, domain.ErrDesignNotFound
	}
	return d, nil
}

func (r *stubDesignRepository) UpdateByID(_ context.Context, id string, update domain.DesignUpdate) (*domain.Design, error) {
	d, ok := r.designs[id]
	if !ok {
		return nil, domain.ErrDesignNotFound
	}
	if update.Name != nil {
		d.Name = *update.Name
	}
	return d, nil
}

func (r *stubDesignRepository) DeleteByID(_ context.Context, id string) (bool, error) {
	if _, ok := r.designs[id]; !ok {
		return false, domain.ErrDesignNotFound
	}
	delete(r.designs, id)
	return true, nil
}

func (r *stubDesignRepository) EnsureIndexes(context.Context) error { return nil }

type stubCommentRepository struct {
	comments []domain.Comment
}

func (r *stubCommentRepository) FindByDesignID(_ context.Context, designID string) ([]domain.Comment, error) {
	out := []domain.Comment{}
	for _, c := range r.comments {
		if c.DesignID == designID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubCommentRepository) Create(_ context.Context, comment *domain.Comment) (*domain.Comment, error) {
	comment.ID = fmt.Sprintf("%024x", len(r.comments)+1)
	r.comments = append(r.comments, *comment)
	return comment, nil
}

func (r *stubCommentRepository) EnsureIndexes(context.Context) error { return nil }

type stubUserRepository struct{}

func (r *stubUserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	return user, nil
}

func (r *stubUserRepository) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepository) FindByID(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepository) UpdateRefreshToken(context.Context, string, string) error { return nil }

func (r *stubUserRepository) EnsureIndexes(context.Context) error { return nil }

func newTestApplication(designs *stubDesignRepository) (*Application, *auth.TokenManager) {
	logger := logging.NewNopLogger()
	tokens := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "inkwell-api",
	})
	publisher := events.NewDesignPublisher(nil)

	relay := realtime.NewRoomRelay(logger)
	presence := realtime.NewPresenceRegistry()
	dispatcher := realtime.NewDispatcher(relay, presence, logger)
	rtServer := realtime.NewServer(dispatcher, realtime.ServerOptions{AllowedOrigin: "*"}, logger)

	app := NewApplication(
		&configs.Config{HTTP: configs.HTTPConfig{CORSOrigin: "*"}},
		authHandler.NewHandler(&stubUserRepository{}, tokens, auth.NewPasswordHasher(), logger),
		designsHandler.NewHandler(designs, publisher, logger),
		commentsHandler.NewHandler(&stubCommentRepository{}, designs, publisher, logger),
		healthHandler.NewHandler(),
		rtServer,
		tokens,
		logger,
		ratelimiter.New(ratelimiter.Options{MaxRatePerSecond: 1000, MaxBurst: 1000}),
	)

	return app, tokens
}

func seedDesign(designs *stubDesignRepository) string {
	d, _ := designs.Create(context.Background(), &domain.Design{
		Name:     "Landing page",
		Width:    1920,
		Height:   1080,
		Elements: []domain.DesignElement{},
	})
	return d.ID
}

func TestMount_AuthBoundaries(t *testing.T) {
	designs := newStubDesignRepository()
	app, tokens := newTestApplication(designs)
	mux := app.Mount()
	designID := seedDesign(designs)

	do := func(method, path, token string, body string) *httptest.ResponseRecorder {
		var r *http.Request
		if body != "" {
			r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		} else {
			r = httptest.NewRequest(method, path, nil)
		}
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, r)
		return rec
	}

	t.Run("reads work without a token", func(t *testing.T) {
		require.Equal(t, http.StatusOK, do(http.MethodGet, "/api/designs", "", "").Code)
		require.Equal(t, http.StatusOK, do(http.MethodGet, "/api/designs/"+designID, "", "").Code)
		require.Equal(t, http.StatusOK, do(http.MethodGet, "/api/designs/"+designID+"/comments", "", "").Code)
	})

	t.Run("comment creation works without a token", func(t *testing.T) {
		rec := do(http.MethodPost, "/api/designs/"+designID+"/comments", "",
			`{"authorName":"dana","text":"looks great @sam"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("mutations demand a token", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized,
			do(http.MethodPost, "/api/designs", "", `{"name":"x","width":10,"height":10}`).Code)
		require.Equal(t, http.StatusUnauthorized,
			do(http.MethodPut, "/api/designs/"+designID, "", `{"name":"y"}`).Code)
		require.Equal(t, http.StatusUnauthorized,
			do(http.MethodDelete, "/api/designs/"+designID, "", "").Code)
	})

	t.Run("mutations reject a garbage token", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized,
			do(http.MethodDelete, "/api/designs/"+designID, "not-a-jwt", "").Code)
	})

	t.Run("mutations succeed with a valid access token", func(t *testing.T) {
		token, err := tokens.SignAccessToken("user-1", "dana@example.com", "Dana")
		require.NoError(t, err)

		rec := do(http.MethodPost, "/api/designs", token, `{"name":"Poster","width":800,"height":600}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = do(http.MethodDelete, "/api/designs/"+designID, token, "")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("health stays open", func(t *testing.T) {
		require.Equal(t, http.StatusOK, do(http.MethodGet, "/api/health", "", "").Code)
	})
}
