// file: router/router_test.go

package router_test

import (
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/router"
	"go-auth-api/service"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// newRouter builds the route table with nil handlers; requests that are
// rejected by routing or by the auth middleware never reach them.
func newRouter() http.Handler {
	logger.Init()
	authMw := handler.NewAuthMiddleware(service.NewAuthService(nil, nil))
	return router.NewRouter(nil, nil, authMw)
}

func TestRouter_TierGating(t *testing.T) {
	r := newRouter()

	cases := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health is public", "GET", "/health", http.StatusOK},
		{"profile requires a token", "GET", "/profile", http.StatusUnauthorized},
		{"logout requires a token", "POST", "/logout", http.StatusUnauthorized},
		{"admin list requires a token", "GET", "/admin/users", http.StatusUnauthorized},
		{"admin detail requires a token", "DELETE", "/admin/users/1", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := newRouter()

	req, _ := http.NewRequest("GET", "/register", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouter_BearerHeaderFormat(t *testing.T) {
	r := newRouter()

	req, _ := http.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Token abc")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
