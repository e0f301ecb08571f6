package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	promhandler "github.com/jwalitptl/clinic-directory/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-directory/internal/middleware"
	"github.com/jwalitptl/clinic-directory/internal/model"
)

type verifier map[string]*model.Principal

func (v verifier) Verify(token string) (*model.Principal, error) {
	if p, ok := v[token]; ok {
		return p, nil
	}
	return nil, errors.New("bad token")
}

// route registers one GET that answers with its own name.
type route struct{ path, name string }

func (r route) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(r.path, func(c *gin.Context) { c.String(http.StatusOK, r.name) })
}

func newTestRouter() *gin.Engine {
	v := verifier{
		"admin":   {UserID: uuid.New(), Role: model.RoleAdmin},
		"patient": {UserID: uuid.New(), Role: model.RolePatient},
	}
	r := NewRouter(middleware.NewAuthMiddleware(v), Handlers{
		Health:     route{"/health/live", "health"},
		Catalog:    route{"/clinics", "catalog"},
		Search:     route{"/search", "search"},
		Lead:       route{"/leads/partner", "lead"},
		Admin:      route{"/admin/clinics", "admin"},
		Moderation: route{"/admin/moderation", "moderation"},
		Portal:     route{"/portal/draft", "portal"},
		Patient:    route{"/patient/requests", "patient"},
		Realtime:   route{"/ws/search", "ws"},
	}, promhandler.New(prometheus.NewRegistry(), "test"), Config{
		CORS:        middleware.DefaultCORSConfig(),
		MetricsPath: "/metrics",
	})
	r.Setup()
	return r.Engine()
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	r := newTestRouter()

	for path, name := range map[string]string{
		"/health/live":      "health",
		"/api/v1/clinics":   "catalog",
		"/api/v1/search":    "search",
		"/api/search":       "search",
		"/api/v1/ws/search": "ws",
	} {
		w := get(r, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, name, w.Body.String(), path)
	}
}

func TestCatalogCarriesCacheHeaders(t *testing.T) {
	w := get(newTestRouter(), "/api/v1/clinics", "")
	assert.Contains(t, w.Header().Get("Cache-Control"), "max-age=60")
	assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))
}

func TestRoleGatedGroups(t *testing.T) {
	r := newTestRouter()

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/admin/clinics", "").Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/api/v1/admin/clinics", "patient").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/admin/clinics", "admin").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/admin/clinics", "admin").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/admin/moderation", "admin").Code)

	assert.Equal(t, http.StatusForbidden, get(r, "/api/v1/portal/draft", "admin").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/patient/requests", "patient").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter()
	get(r, "/api/v1/clinics", "")

	w := get(r, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}
