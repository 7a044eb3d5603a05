package designs

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-hq/inkwell/internal/domain"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/events"
	"github.com/inkwell-hq/inkwell/internal/infrastructure/logging"
)

// fakeDesignRepository mimics the persistence layer's id handling:
// 24-char hex ids, not-found and invalid-id sentinels.
type fakeDesignRepository struct {
	mu      sync.Mutex
	designs map[string]domain.Design
	nextID  int
}

func newFakeDesignRepository() *fakeDesignRepository {
	return &fakeDesignRepository{designs: make(map[string]domain.Design)}
}

func (f *fakeDesignRepository) newID() string {
	f.nextID++
	return fmt.Sprintf("%024x", f.nextID)
}

func validID(id string) bool {
	if len(id) != 24 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

func (f *fakeDesignRepository) Create(ctx context.Context, design *domain.Design) (*domain.Design, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *design
	stored.ID = f.newID()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	f.designs[stored.ID] = stored

	return &stored, nil
}

func (f *fakeDesignRepository) FindAll(ctx context.Context, opts domain.FindOptions) ([]domain.Design, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := make([]domain.Design, 0, len(f.designs))
	for _, d := range f.designs {
		if opts.Summary {
			d.Elements = nil
		}
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	if opts.Offset > 0 {
		if opts.Offset >= int64(len(all)) {
			return []domain.Design{}, nil
		}
		all = all[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < int64(len(all)) {
		all = all[:opts.Limit]
	}

	return all, nil
}

func (f *fakeDesignRepository) FindByID(ctx context.Context, id string) (*domain.Design, error) {
	if !validID(id) {
		return nil, domain.ErrInvalidID
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.designs[id]
	if !ok {
		return nil, domain.ErrDesignNotFound
	}
	return &d, nil
}

func (f *fakeDesignRepository) UpdateByID(ctx context.Context, id string, update domain.DesignUpdate) (*domain.Design, error) {
	if !validID(id) {
		return nil, domain.ErrInvalidID
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.designs[id]
	if !ok {
		return nil, domain.ErrDesignNotFound
	}

	if update.Name != nil {
		d.Name = *update.Name
	}
	if update.Width != nil {
		d.Width = *update.Width
	}
	if update.Height != nil {
		d.Height = *update.Height
	}
	if update.Elements != nil {
		d.Elements = update.Elements
	}
	if update.ThumbnailURL != nil {
		d.ThumbnailURL = *update.ThumbnailURL
	}
	d.UpdatedAt = time.Now().UTC()

	f.designs[id] = d
	return &d, nil
}

func (f *fakeDesignRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, domain.ErrInvalidID
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.designs[id]; !ok {
		return false, nil
	}
	delete(f.designs, id)
	return true, nil
}

func (f *fakeDesignRepository) EnsureIndexes(ctx context.Context) error { return nil }

func newTestRouter(repo domain.DesignRepository) *chi.Mux {
	h := NewHandler(repo, events.NewDesignPublisher(nil), logging.NewNopLogger())

	r := chi.NewRouter()
	r.Get("/designs", h.ListDesignsHandler)
	r.Post("/designs", h.CreateDesignHandler)
	r.Get("/designs/{designId}", h.GetDesignHandler)
	r.Put("/designs/{designId}", h.UpdateDesignHandler)
	r.Delete("/designs/{designId}", h.DeleteDesignHandler)
	return r
}

type designEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, designEnvelope) {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env designEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	return rec, env
}

func createTestDesign(t *testing.T, router http.Handler, name string) domain.Design {
	t.Helper()

	body := fmt.Sprintf(`{"name":%q,"width":1920,"height":1080}`, name)
	rec, env := doRequest(t, router, http.MethodPost, "/designs", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var design domain.Design
	require.NoError(t, json.Unmarshal(env.Data, &design))
	return design
}

func TestCreateDesignHandler(t *testing.T) {
	router := newTestRouter(newFakeDesignRepository())

	t.Run("creates an empty canvas", func(t *testing.T) {
		design := createTestDesign(t, router, "Landing page")

		require.NotEmpty(t, design.ID)
		require.Equal(t, "Landing page", design.Name)
		require.Equal(t, float64(1920), design.Width)
		require.Empty(t, design.Elements)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		rec, env := doRequest(t, router, http.MethodPost, "/designs", `{"width":100,"height":100}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
	})

	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		rec, _ := doRequest(t, router, http.MethodPost, "/designs", `{"name":"x","width":0,"height":100}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		rec, _ := doRequest(t, router, http.MethodPost, "/designs", `{"name":"x","width":1,"height":1,"bogus":true}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListDesignsHandler(t *testing.T) {
	router := newTestRouter(newFakeDesignRepository())

	for i := 0; i < 3; i++ {
		createTestDesign(t, router, fmt.Sprintf("design %d", i))
	}

	t.Run("lists all", func(t *testing.T) {
		rec, env := doRequest(t, router, http.MethodGet, "/designs", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var designs []domain.Design
		require.NoError(t, json.Unmarshal(env.Data, &designs))
		require.Len(t, designs, 3)
	})

	t.Run("honors limit and offset", func(t *testing.T) {
		rec, env := doRequest(t, router, http.MethodGet, "/designs?limit=1&offset=1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var designs []domain.Design
		require.NoError(t, json.Unmarshal(env.Data, &designs))
		require.Len(t, designs, 1)
	})

	t.Run("rejects malformed query values", func(t *testing.T) {
		for _, q := range []string{"limit=0", "limit=abc", "offset=-1", "summary=maybe"} {
			rec, _ := doRequest(t, router, http.MethodGet, "/designs?"+q, "")
			require.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
	})
}

func TestGetDesignHandler(t *testing.T) {
	router := newTestRouter(newFakeDesignRepository())
	design := createTestDesign(t, router, "homepage")

	t.Run("found", func(t *testing.T) {
		rec, env := doRequest(t, router, http.MethodGet, "/designs/"+design.ID, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.Design
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Equal(t, design.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		rec, env := doRequest(t, router, http.MethodGet, "/designs/"+strings.Repeat("f", 24), "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "Design not found", env.Error.Message)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec, _ := doRequest(t, router, http.MethodGet, "/designs/not-an-id", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateDesignHandler(t *testing.T) {
	router := newTestRouter(newFakeDesignRepository())
	design := createTestDesign(t, router, "draft")

	t.Run("partial update keeps other fields", func(t *testing.T) {
		rec, env := doRequest(t, router, http.MethodPut, "/designs/"+design.ID, `{"name":"final"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.Design
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Equal(t, "final", got.Name)
		require.Equal(t, float64(1920), got.Width)
	})

	t.Run("replaces elements", func(t *testing.T) {
		body := `{"elements":[{"id":"el-1","type":"rect","x":0,"y":0,"width":10,"height":10,"rotation":0,"zIndex":1,"opacity":1}]}`
		rec, env := doRequest(t, router, http.MethodPut, "/designs/"+design.ID, body)
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.Design
		require.NoError(t, json.Unmarshal(env.Data, &got))
		require.Len(t, got.Elements, 1)
		require.Equal(t, domain.ElementRect, got.Elements[0].Type)
	})

	t.Run("rejects bad element type", func(t *testing.T) {
		body := `{"elements":[{"id":"el-1","type":"triangle","x":0,"y":0,"width":1,"height":1,"rotation":0,"zIndex":1,"opacity":1}]}`
		rec, _ := doRequest(t, router, http.MethodPut, "/designs/"+design.ID, body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		rec, _ := doRequest(t, router, http.MethodPut, "/designs/"+strings.Repeat("a", 24), `{"name":"x"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteDesignHandler(t *testing.T) {
	router := newTestRouter(newFakeDesignRepository())
	design := createTestDesign(t, router, "ephemeral")

	t.Run("deletes and reports", func(t *testing.T) {
		rec, env := doRequest(t, router, http.MethodDelete, "/designs/"+design.ID, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp deleteDesignResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		require.True(t, resp.Deleted)
	})

	t.Run("deleting again yields not found", func(t *testing.T) {
		rec, _ := doRequest(t, router, http.MethodDelete, "/designs/"+design.ID, "")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
