package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeChecker struct{ err error }

func (f fakeChecker) Health(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	down := fakeChecker{err: errors.New("connection refused")}

	tests := []struct {
		name       string
		h          *HealthHandler
		wantCode   int
		tokenStore string
		database   string
	}{
		{
			name:       "all healthy",
			h:          NewHealthHandler(fakeChecker{}, "redis", fakeChecker{}),
			wantCode:   http.StatusOK,
			tokenStore: "connected",
			database:   "connected",
		},
		{
			name:       "no token store, no audit",
			h:          NewHealthHandler(fakeChecker{}, "none", nil),
			wantCode:   http.StatusOK,
			tokenStore: "not_configured",
			database:   "disabled",
		},
		{
			name:       "token store down",
			h:          NewHealthHandler(down, "redis", fakeChecker{}),
			wantCode:   http.StatusServiceUnavailable,
			tokenStore: "disconnected",
			database:   "connected",
		},
		{
			name:       "audit database down",
			h:          NewHealthHandler(fakeChecker{}, "memory", down),
			wantCode:   http.StatusServiceUnavailable,
			tokenStore: "connected",
			database:   "disconnected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", tt.h.Check)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			body := decode(t, w)
			assert.Equal(t, tt.tokenStore, body["tokenStore"])
			assert.Equal(t, tt.database, body["database"])
		})
	}
}
