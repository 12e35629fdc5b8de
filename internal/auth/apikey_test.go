package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter(keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/write", RequireAPIKey(keys), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRequireAPIKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		keys       []string
		presented  string
		wantStatus int
	}{
		{name: "no keys configured", keys: nil, presented: "anything", wantStatus: http.StatusInternalServerError},
		{name: "missing header", keys: []string{"k1"}, presented: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong key", keys: []string{"k1"}, presented: "k2", wantStatus: http.StatusUnauthorized},
		{name: "valid key", keys: []string{"k1"}, presented: "k1", wantStatus: http.StatusOK},
		{name: "any configured key works", keys: []string{"k1", "k2"}, presented: "k2", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(tt.keys)
			req := httptest.NewRequest(http.MethodPost, "/write", nil)
			if tt.presented != "" {
				req.Header.Set(HeaderAPIKey, tt.presented)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				require.Contains(t, w.Body.String(), "error")
			}
		})
	}
}
