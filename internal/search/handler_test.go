package search

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"bookhub/internal/events"
	"bookhub/pkg/database"
)

func newTestRouter(t *testing.T, p *fakeProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewService(db, p, NewMemoryCooldown(60*time.Second), NewIngestLog(db), events.NewHub())

	router := gin.New()
	NewHandler(svc).RegisterRoutes(router)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestSearchEndpointShortQuery(t *testing.T) {
	router := newTestRouter(t, &fakeProvider{})

	w := get(router, "/search?q=x")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpointRateLimit(t *testing.T) {
	provider := &fakeProvider{} // never returns a match
	router := newTestRouter(t, provider)

	w := get(router, "/search?q=dune")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, 1, provider.calls)

	w = get(router, "/search?q=dune")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, 1, provider.calls, "429 without a second external call")
}
