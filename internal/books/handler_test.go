package books

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookhub/internal/auth"
	"bookhub/pkg/models"
	"bookhub/pkg/store"
)

const testKey = "test-key"

func newTestRouter(t *testing.T, seed []models.Book, keys []string) (*gin.Engine, store.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := store.Config{
		BooksPath:   filepath.Join(dir, "books.json"),
		ReviewsPath: filepath.Join(dir, "reviews.json"),
	}
	if seed != nil {
		raw, err := json.Marshal(map[string][]models.Book{"books": seed})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(cfg.BooksPath, raw, 0o644))
	}

	st := store.Open(cfg, zap.NewNop())
	router := gin.New()
	api := router.Group("/api")

	h := NewHandler(st, nil)
	h.RegisterPublicRoutes(api.Group("/books"))

	protected := api.Group("")
	protected.Use(auth.RequireAPIKey(keys))
	h.RegisterProtectedRoutes(protected)

	return router, cfg
}

func do(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func withKey() map[string]string {
	return map[string]string{auth.HeaderAPIKey: testKey}
}

func TestListBooksReturnsStorageOrder(t *testing.T) {
	t.Parallel()

	seed := []models.Book{
		{ID: "2", Title: "B", Author: "X"},
		{ID: "1", Title: "A", Author: "Y"},
		{ID: "9", Title: "C", Author: "Z"},
	}
	router, _ := newTestRouter(t, seed, []string{testKey})

	w := do(router, http.MethodGet, "/api/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 3)
	require.Equal(t, "2", got[0].ID)
	require.Equal(t, "1", got[1].ID)
	require.Equal(t, "9", got[2].ID)
}

func TestPublishedInRange(t *testing.T) {
	t.Parallel()

	seed := []models.Book{
		{ID: "1", DatePublished: "2019-06-01"},
		{ID: "2", DatePublished: "2020-01-01"},
		{ID: "3", DatePublished: "2021-12-31"},
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantIDs    []string
	}{
		{name: "missing params", query: "", wantStatus: http.StatusBadRequest},
		{name: "missing end", query: "?start=2020-01-01", wantStatus: http.StatusBadRequest},
		{name: "invalid start", query: "?start=nope&end=2021-01-01", wantStatus: http.StatusBadRequest},
		{name: "start after end", query: "?start=2020-01-01&end=2019-01-01", wantStatus: http.StatusBadRequest},
		{name: "inclusive bounds", query: "?start=2020-01-01&end=2021-12-31", wantStatus: http.StatusOK, wantIDs: []string{"2", "3"}},
		{name: "full range", query: "?start=2000-01-01&end=2030-01-01", wantStatus: http.StatusOK, wantIDs: []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newTestRouter(t, seed, []string{testKey})
			w := do(router, http.MethodGet, "/api/books/published"+tt.query, "", nil)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				require.Contains(t, w.Body.String(), "error")
				return
			}

			var got []models.Book
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			ids := make([]string, 0, len(got))
			for _, b := range got {
				ids = append(ids, b.ID)
			}
			require.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestTopRatedCapsAtTen(t *testing.T) {
	t.Parallel()

	seed := make([]models.Book, 0, 12)
	for i := 1; i <= 12; i++ {
		seed = append(seed, models.Book{
			ID:          strconv.Itoa(i),
			Rating:      float64(i%5) + 0.5,
			ReviewCount: i,
		})
	}
	router, _ := newTestRouter(t, seed, []string{testKey})

	w := do(router, http.MethodGet, "/api/books/top-rated", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 10)
	for i := 1; i < len(got); i++ {
		prev := got[i-1].Rating * float64(got[i-1].ReviewCount)
		cur := got[i].Rating * float64(got[i].ReviewCount)
		require.GreaterOrEqual(t, prev, cur)
	}
}

func TestFeatured(t *testing.T) {
	t.Parallel()

	seed := []models.Book{
		{ID: "1", Featured: true},
		{ID: "2"},
		{ID: "3", Featured: true},
	}
	router, _ := newTestRouter(t, seed, []string{testKey})

	w := do(router, http.MethodGet, "/api/books/featured", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].ID)
	require.Equal(t, "3", got[1].ID)
}

func TestGetByID(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, []models.Book{{ID: "1", Title: "T"}}, []string{testKey})

	w := do(router, http.MethodGet, "/api/books/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/api/books/404", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Book not found.")
}

func TestCreateBookRequiresAPIKey(t *testing.T) {
	t.Parallel()

	router, cfg := newTestRouter(t, nil, []string{testKey})
	body := `{"title":"T","author":"A","price":9.99,"datePublished":"2020-01-01"}`

	w := do(router, http.MethodPost, "/api/books", body, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodPost, "/api/books", body, map[string]string{auth.HeaderAPIKey: "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// rejected writes must not touch the collection or the file
	w = do(router, http.MethodGet, "/api/books", "", nil)
	require.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
	_, err := os.Stat(cfg.BooksPath)
	require.True(t, os.IsNotExist(err))
}

func TestCreateBookNoKeysConfigured(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, nil, nil)
	body := `{"title":"T","author":"A","price":9.99,"datePublished":"2020-01-01"}`

	w := do(router, http.MethodPost, "/api/books", body, withKey())
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCreateBookDefaults(t *testing.T) {
	t.Parallel()

	router, cfg := newTestRouter(t, nil, []string{testKey})
	body := `{"title":"Minimal","author":"A","price":0,"datePublished":"2020-05-01"}`

	w := do(router, http.MethodPost, "/api/books", body, withKey())
	require.Equal(t, http.StatusCreated, w.Code)

	var got models.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "1", got.ID)
	require.Equal(t, "English", got.Language)
	require.True(t, got.InStock)
	require.False(t, got.Featured)
	require.Equal(t, []string{}, got.Genre)
	require.Equal(t, []string{}, got.Tags)
	require.Zero(t, got.Rating)
	require.Zero(t, got.ReviewCount)
	require.Nil(t, got.Pages)

	raw, err := os.ReadFile(cfg.BooksPath)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"Minimal"`)
}

func TestCreateBookExplicitFields(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, nil, []string{testKey})
	body := `{
		"title":"Full","author":"A","price":12.5,"datePublished":"2020-05-01",
		"language":"German","inStock":false,"featured":true,
		"genre":["sci-fi"],"tags":["space"],"rating":4.5,"reviewCount":7,"pages":320
	}`

	w := do(router, http.MethodPost, "/api/books", body, withKey())
	require.Equal(t, http.StatusCreated, w.Code)

	var got models.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "German", got.Language)
	require.False(t, got.InStock)
	require.True(t, got.Featured)
	require.Equal(t, []string{"sci-fi"}, got.Genre)
	require.Equal(t, 4.5, got.Rating)
	require.Equal(t, 7, got.ReviewCount)
	require.NotNil(t, got.Pages)
	require.Equal(t, 320, *got.Pages)
}

func TestCreateBookIDSequence(t *testing.T) {
	t.Parallel()

	seed := []models.Book{{ID: "1"}, {ID: "3"}, {ID: "5"}}
	router, _ := newTestRouter(t, seed, []string{testKey})
	body := `{"title":"Next","author":"A","price":1,"datePublished":"2020-01-01"}`

	w := do(router, http.MethodPost, "/api/books", body, withKey())
	require.Equal(t, http.StatusCreated, w.Code)

	var got models.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "6", got.ID)
}

func TestCreateBookValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{`},
		{name: "missing title", body: `{"author":"A","price":1,"datePublished":"2020-01-01"}`},
		{name: "missing author", body: `{"title":"T","price":1,"datePublished":"2020-01-01"}`},
		{name: "missing price", body: `{"title":"T","author":"A","datePublished":"2020-01-01"}`},
		{name: "negative price", body: `{"title":"T","author":"A","price":-1,"datePublished":"2020-01-01"}`},
		{name: "missing date", body: `{"title":"T","author":"A","price":1}`},
		{name: "bad date", body: `{"title":"T","author":"A","price":1,"datePublished":"last tuesday"}`},
		{name: "rating too high", body: `{"title":"T","author":"A","price":1,"datePublished":"2020-01-01","rating":6}`},
		{name: "rating negative", body: `{"title":"T","author":"A","price":1,"datePublished":"2020-01-01","rating":-1}`},
		{name: "zero pages", body: `{"title":"T","author":"A","price":1,"datePublished":"2020-01-01","pages":0}`},
		{name: "negative reviewCount", body: `{"title":"T","author":"A","price":1,"datePublished":"2020-01-01","reviewCount":-2}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newTestRouter(t, nil, []string{testKey})
			w := do(router, http.MethodPost, "/api/books", tt.body, withKey())
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Contains(t, w.Body.String(), "error")
		})
	}
}
