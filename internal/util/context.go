package util

import (
	"context"

	"github.com/gin-gonic/gin"
)

const requestMetaKey = "request_meta"

// RequestMeta is the subset of an HTTP request recorded in the audit trail.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Path      string
	Method    string
}

// IPMiddleware resolves the caller once per request so audit entries written
// after the handler returns still see it.
func IPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestMetaKey, RequestMeta{
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Path:      c.Request.URL.Path,
			Method:    c.Request.Method,
		})
		c.Next()
	}
}

// GetIPFromContext returns the caller address, or "" outside a request.
func GetIPFromContext(ctx context.Context) string {
	return GetRequestMeta(ctx).ClientIP
}

// GetRequestMeta returns request metadata when ctx is, or wraps, a gin
// request context.
func GetRequestMeta(ctx context.Context) RequestMeta {
	c := ginContext(ctx)
	if c == nil {
		return RequestMeta{}
	}
	if v, ok := c.Get(requestMetaKey); ok {
		if meta, ok := v.(RequestMeta); ok {
			return meta
		}
	}
	if c.Request == nil {
		return RequestMeta{}
	}
	return RequestMeta{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	}
}

func ginContext(ctx context.Context) *gin.Context {
	if c, ok := ctx.(*gin.Context); ok {
		return c
	}
	c, _ := ctx.Value(gin.ContextKey).(*gin.Context)
	return c
}
