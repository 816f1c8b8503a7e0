package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIPMiddleware(t *testing.T) {
	var seen RequestMeta
	r := gin.New()
	r.Use(IPMiddleware())
	r.POST("/api/tokens/validate", func(c *gin.Context) {
		// derived contexts reach the same request
		ctx, cancel := context.WithTimeout(c, time.Second)
		defer cancel()
		seen = GetRequestMeta(ctx)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/tokens/validate", nil)
	req.RemoteAddr = "192.0.2.10:4321"
	req.Header.Set("User-Agent", "demogate-test")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, RequestMeta{
		ClientIP:  "192.0.2.10",
		UserAgent: "demogate-test",
		Path:      "/api/tokens/validate",
		Method:    http.MethodPost,
	}, seen)
}

func TestGetRequestMetaWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/tokens/list", nil)
	c.Request.RemoteAddr = "[2001:db8::1]:443"

	meta := GetRequestMeta(c)
	assert.Equal(t, "2001:db8::1", meta.ClientIP)
	assert.Equal(t, "/api/tokens/list", meta.Path)
	assert.Equal(t, "2001:db8::1", GetIPFromContext(c))
}

func TestGetRequestMetaOutsideRequest(t *testing.T) {
	assert.Equal(t, RequestMeta{}, GetRequestMeta(context.Background()))
	assert.Empty(t, GetIPFromContext(context.Background()))

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	require.Nil(t, c.Request)
	assert.Equal(t, RequestMeta{}, GetRequestMeta(c))
}
