package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(mw gin.HandlerFunc) (*gin.Engine, *bool) {
	gin.SetMode(gin.TestMode)
	reached := false
	r := gin.New()
	r.POST("/hook", mw, func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})
	return r, &reached
}

func TestWebhookSecretMiddleware(t *testing.T) {
	cases := []struct {
		name    string
		secret  string
		headers map[string]string
		want    int
	}{
		{"hottok header", "s3cret", map[string]string{HotmartTokenHeader: "s3cret"}, http.StatusOK},
		{"provider header", "s3cret", map[string]string{ProviderTokenHeader: "s3cret"}, http.StatusOK},
		{"stale hottok with valid provider token", "s3cret", map[string]string{HotmartTokenHeader: "old", ProviderTokenHeader: "s3cret"}, http.StatusOK},
		{"valid hottok with stale provider token", "s3cret", map[string]string{HotmartTokenHeader: "s3cret", ProviderTokenHeader: "old"}, http.StatusOK},
		{"wrong token", "s3cret", map[string]string{HotmartTokenHeader: "nope"}, http.StatusUnauthorized},
		{"both headers wrong", "s3cret", map[string]string{HotmartTokenHeader: "nope", ProviderTokenHeader: "nope"}, http.StatusUnauthorized},
		{"missing token", "s3cret", nil, http.StatusUnauthorized},
		{"secret not configured", "", map[string]string{HotmartTokenHeader: ""}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, reached := newRouter(WebhookSecretMiddleware(tc.secret))

			req := httptest.NewRequest(http.MethodPost, "/hook", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			assert.Equal(t, tc.want == http.StatusOK, *reached)
			if tc.want != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestAdminKeyMiddleware(t *testing.T) {
	r, _ := newRouter(AdminKeyMiddleware("admin"))

	req := httptest.NewRequest(http.MethodPost, "/hook", nil)
	req.Header.Set(AdminKeyHeader, "admin")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	disabled, reached := newRouter(AdminKeyMiddleware(""))
	w = httptest.NewRecorder()
	disabled.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, *reached)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
