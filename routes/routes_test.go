package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cncdesign/cncbackend/config"
	"github.com/cncdesign/cncbackend/metrics"
	"github.com/cncdesign/cncbackend/middleware"
	"github.com/cncdesign/cncbackend/repository"
	"github.com/cncdesign/cncbackend/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{JWTSecret: testSecret, AccessTTL: time.Hour},
		Uploads: config.UploadConfig{
			MaxSizeMB:              1,
			AllowedExtensions:      []string{".png", ".pdf"},
			AllowedMimeTypes:       []string{"image/png", "application/pdf"},
			AttachmentMimeTypes:    []string{"image/*", "application/pdf"},
			MaxAttachmentsPerEntry: 10,
		},
		Query: config.QueryConfig{MaxLimit: 100, DefaultLimit: 20},
	}
}

func newServer(t *testing.T, limiter func() gin.HandlerFunc) (*gin.Engine, *repository.Stores) {
	t.Helper()
	stores := repository.NewMemoryStore().Stores()
	require.NoError(t, utils.SeedAdminUser(t.Context(), stores.Users, "admin@cncdesign.com", "admin123"))

	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)

	r := gin.New()
	Register(r, Dependencies{
		Config:     testConfig(),
		Stores:     stores,
		NewLimiter: limiter,
		Gatherer:   reg,
	})
	return r, stores
}

func call(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	w := call(r, http.MethodPost, "/admin/login", "", map[string]string{"email": "admin@cncdesign.com", "password": "admin123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["token"]
}

var adminRoutes = []struct{ method, path string }{
	{http.MethodGet, "/contact"},
	{http.MethodGet, "/admin/submissions"},
	{http.MethodGet, "/contact/some-id"},
	{http.MethodPatch, "/contact/some-id/status"},
	{http.MethodDelete, "/contact?id=some-id"},
	{http.MethodDelete, "/contact/some-id"},
	{http.MethodPost, "/projects"},
	{http.MethodPatch, "/projects/some-id"},
	{http.MethodDelete, "/projects?id=some-id"},
	{http.MethodDelete, "/projects/some-id"},
	{http.MethodGet, "/admin/verify"},
	{http.MethodPost, "/admin/users/me/password"},
	{http.MethodDelete, "/admin/uploads/submissions/2026/01/x.png"},
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, _ := newServer(t, nil)

	wrongKey, err := utils.GenerateAccessToken("u1", "admin@cncdesign.com", "ADMIN", "another-secret", time.Hour)
	require.NoError(t, err)

	for _, rt := range adminRoutes {
		for name, header := range map[string]string{
			"none":      "",
			"malformed": "Token abc",
			"bad sig":   "Bearer " + wrongKey,
		} {
			req := httptest.NewRequest(rt.method, rt.path, strings.NewReader(`{}`))
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s (%s)", rt.method, rt.path, name)
			assert.NotContains(t, w.Body.String(), "signature", "%s %s", rt.method, rt.path)
		}
	}
}

func TestPublicRoutesOpen(t *testing.T) {
	r, _ := newServer(t, nil)

	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/ping", "", nil).Code)
	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/projects", "", nil).Code)
	require.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/projects/unknown", "", nil).Code)
	require.Equal(t, http.StatusServiceUnavailable, call(r, http.MethodPost, "/uploads", "", nil).Code)

	w := call(r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cncbackend_submissions_created_total")
}

func TestSubmissionLifecycle(t *testing.T) {
	r, _ := newServer(t, nil)
	token := login(t, r)

	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/admin/verify", token, nil).Code)

	w := call(r, http.MethodPost, "/contact", "", map[string]any{
		"name":        "Abebe",
		"email":       "abebe@example.com",
		"phone":       "+251911000000",
		"projectType": "wardrobe",
		"description": "Sliding doors",
		"status":      "completed",
		"attachments": []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.pdf"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID          string `json:"id"`
		ImagesCount int    `json:"imagesCount"`
		FilesCount  int    `json:"filesCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 1, created.ImagesCount)
	assert.Equal(t, 1, created.FilesCount)

	w = call(r, http.MethodGet, "/admin/submissions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	w = call(r, http.MethodPatch, "/contact/"+created.ID+"/status", token, map[string]string{"status": "quoted"})
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, http.StatusOK, call(r, http.MethodDelete, "/contact?id="+created.ID, token, nil).Code)
	require.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/contact/"+created.ID, token, nil).Code)
}

func TestProjectLifecycle(t *testing.T) {
	r, _ := newServer(t, nil)
	token := login(t, r)

	body := map[string]any{
		"titleEn":       "Modern Walnut Dining Table",
		"titleAm":       "ዘመናዊ የዋልነት የመመገቢያ ጠረጴዛ",
		"descriptionEn": "Precision CNC-cut dining table",
		"descriptionAm": "በCNC የተቆረጠ የመመገቢያ ጠረጴዛ",
		"category":      "furniture",
		"materials":     []string{"Walnut Wood"},
		"images":        []string{"/projects/dining-table-1.jpg"},
		"featured":      true,
	}
	require.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/projects", "", body).Code)

	w := call(r, http.MethodPost, "/projects", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID       string `json:"id"`
		Featured bool   `json:"featured"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Featured)

	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/projects/"+created.ID, "", nil).Code)
	require.Equal(t, http.StatusOK, call(r, http.MethodPatch, "/projects/"+created.ID, token, map[string]any{"featured": false}).Code)
	require.Equal(t, http.StatusOK, call(r, http.MethodDelete, "/projects/"+created.ID, token, nil).Code)
	require.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/projects/"+created.ID, "", nil).Code)
}

func TestPublicWritesAreRateLimited(t *testing.T) {
	r, _ := newServer(t, func() gin.HandlerFunc { return middleware.RateLimitMiddleware(0.01, 1) })

	submission := map[string]any{"name": "A"}
	require.Equal(t, http.StatusBadRequest, call(r, http.MethodPost, "/contact", "", submission).Code)
	require.Equal(t, http.StatusTooManyRequests, call(r, http.MethodPost, "/contact", "", submission).Code)

	// each route has its own budget
	require.Equal(t, http.StatusServiceUnavailable, call(r, http.MethodPost, "/uploads", "", nil).Code)
}
