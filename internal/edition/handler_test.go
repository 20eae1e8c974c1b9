package edition

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"bookhub/internal/events"
	"bookhub/pkg/database"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`INSERT INTO works (id, title) VALUES ('w1', 'Seed Work')`)
	require.NoError(t, err)

	h := NewHandler(NewRepo(db), events.NewHub())
	router := gin.New()
	h.RegisterRoutes(router.Group("/editions"))
	h.RegisterDiscovery(router.Group("/discover"))
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestUpsertEndpointStatusCodes(t *testing.T) {
	router := newTestRouter(t)
	payload := `{"work_id":"w1","type":"audiobook","format":"m4b","isbn":"9780804139201"}`

	w := doJSON(router, http.MethodPost, "/editions", payload)
	require.Equal(t, http.StatusCreated, w.Code, "first submission creates")

	var created struct {
		Status  string `json:"status"`
		Edition struct {
			ID string `json:"id"`
		} `json:"edition"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "created", created.Status)

	w = doJSON(router, http.MethodPost, "/editions", payload)
	require.Equal(t, http.StatusOK, w.Code, "second submission updates")

	var updated struct {
		Status  string `json:"status"`
		Edition struct {
			ID string `json:"id"`
		} `json:"edition"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "updated", updated.Status)
	require.Equal(t, created.Edition.ID, updated.Edition.ID)
}

func TestUpsertEndpointValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/editions", `{"work_id":"w1","type":"print","format":"hc"}`)
	require.Equal(t, http.StatusBadRequest, w.Code, "isbn/asin both missing")

	w = doJSON(router, http.MethodPost, "/editions", `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiscoverEndpointBooleanEncoding(t *testing.T) {
	router := newTestRouter(t)

	for i, body := range []string{
		`{"work_id":"w1","type":"audiobook","format":"m4b","isbn":"i-1","explicit":true}`,
		`{"work_id":"w1","type":"audiobook","format":"m4b","isbn":"i-2"}`,
	} {
		w := doJSON(router, http.MethodPost, "/editions", body)
		require.Equal(t, http.StatusCreated, w.Code, "seed %d", i)
	}

	type listResp struct {
		Total int `json:"total"`
	}

	var resp listResp
	w := doJSON(router, http.MethodGet, "/discover/editions?explicit=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)

	// anything that is not the string "true" encodes as false
	w = doJSON(router, http.MethodGet, "/discover/editions?explicit=banana", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)

	// absent parameter means no predicate at all
	w = doJSON(router, http.MethodGet, "/discover/editions", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
}

func TestLookupEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/editions",
		`{"work_id":"w1","type":"print","format":"hardcover","isbn":"isbn-1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/editions/lookup?isbn=isbn-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/editions/lookup?isbn=missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/editions/lookup", "")
	require.Equal(t, http.StatusBadRequest, w.Code, "at least one identifier required")
}
