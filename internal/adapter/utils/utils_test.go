package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouterMountsRoutesAndDocs(t *testing.T) {
	var gotID string
	r := NewRouter([]Route{
		{Method: http.MethodGet, Pattern: "/status/{id}", Handler: func(w http.ResponseWriter, req *http.Request) {
			gotID = PathID(req)
			w.WriteHeader(http.StatusTeapot)
		}},
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/job-7", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "job-7", gotID)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status/job-7", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/swagger/index.html", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPathIDWithoutRouteContext(t *testing.T) {
	assert.Empty(t, PathID(httptest.NewRequest(http.MethodGet, "/status/x", nil)))
}

func TestNewIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
	assert.Len(t, NewID(), 36)
}
