package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	trequire "github.com/stretchr/testify/require"

	"forestpest/auth/internal/models"
	"forestpest/auth/internal/service"
)

type stubAuth struct {
	ids map[string]service.Identity
	err error
}

func (s stubAuth) Authenticate(ctx context.Context, token string) (service.Identity, error) {
	if s.err != nil {
		return service.Identity{}, s.err
	}
	id, ok := s.ids[token]
	if !ok {
		return service.Identity{}, service.ErrInvalidToken
	}
	return id, nil
}

func (s stubAuth) Authorize(id service.Identity, req service.AuthRequirement) error {
	for _, r := range req.AnyRole {
		if r == id.Role {
			return nil
		}
	}
	if len(req.AnyRole) > 0 {
		return service.ErrPermissionDenied
	}
	if len(req.AnyPermission) > 0 && id.Role != models.UserRoleAdmin {
		return service.ErrPermissionDenied
	}
	return nil
}

func newEngine(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(zerolog.Nop()), Recovery(zerolog.Nop()), CORS([]string{"https://forest.example"}))

	ok := func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.String(http.StatusOK, id.UserID)
	}
	r.GET("/open", func(c *gin.Context) { c.String(http.StatusOK, BearerToken(c)) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/me", Auth(auth), ok)
	r.GET("/admin", Auth(auth), RequirePermission(auth, "user:manage"), ok)
	r.GET("/experts", Auth(auth), RequireRoles(auth, models.UserRoleExpert, models.UserRoleAdmin), ok)
	return r
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var testIdentities = map[string]service.Identity{
	"admin-token":  {UserID: "a1", Role: models.UserRoleAdmin},
	"expert-token": {UserID: "e1", Role: models.UserRoleExpert},
	"user-token":   {UserID: "u1", Role: models.UserRoleUser},
}

func TestBearerToken(t *testing.T) {
	r := newEngine(stubAuth{})

	trequire.Equal(t, "abc", get(r, "/open", map[string]string{"Authorization": "Bearer abc"}).Body.String())
	trequire.Equal(t, "abc", get(r, "/open", map[string]string{"Authorization": "bearer  abc "}).Body.String())
	trequire.Empty(t, get(r, "/open", map[string]string{"Authorization": "Basic abc"}).Body.String())
	trequire.Empty(t, get(r, "/open", nil).Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(stubAuth{ids: testIdentities})

	rec := get(r, "/me", nil)
	trequire.Equal(t, http.StatusUnauthorized, rec.Code)
	trequire.Contains(t, rec.Body.String(), "missing_token")

	rec = get(r, "/me", map[string]string{"Authorization": "Bearer forged"})
	trequire.Equal(t, http.StatusUnauthorized, rec.Code)
	trequire.Contains(t, rec.Body.String(), "invalid_token")

	rec = get(r, "/me", map[string]string{"Authorization": "Bearer user-token"})
	trequire.Equal(t, http.StatusOK, rec.Code)
	trequire.Equal(t, "u1", rec.Body.String())
}

func TestAuthMiddlewareErrors(t *testing.T) {
	rec := get(newEngine(stubAuth{err: service.ErrAccountDisabled}), "/me", map[string]string{"Authorization": "Bearer x"})
	trequire.Equal(t, http.StatusForbidden, rec.Code)

	rec = get(newEngine(stubAuth{err: errors.New("redis down")}), "/me", map[string]string{"Authorization": "Bearer x"})
	trequire.Equal(t, http.StatusInternalServerError, rec.Code)
	trequire.NotContains(t, rec.Body.String(), "redis")
}

func TestRequirePermissionAndRoles(t *testing.T) {
	r := newEngine(stubAuth{ids: testIdentities})
	bearer := func(tok string) map[string]string { return map[string]string{"Authorization": "Bearer " + tok} }

	trequire.Equal(t, http.StatusForbidden, get(r, "/admin", bearer("user-token")).Code)
	trequire.Equal(t, http.StatusOK, get(r, "/admin", bearer("admin-token")).Code)
	trequire.Equal(t, http.StatusUnauthorized, get(r, "/admin", nil).Code)

	trequire.Equal(t, http.StatusOK, get(r, "/experts", bearer("expert-token")).Code)
	trequire.Equal(t, http.StatusForbidden, get(r, "/experts", bearer("user-token")).Code)
}

func TestRequestID(t *testing.T) {
	r := newEngine(stubAuth{})

	rec := get(r, "/open", map[string]string{"X-Request-Id": "trace-42"})
	trequire.Equal(t, "trace-42", rec.Header().Get("X-Request-Id"))

	rec = get(r, "/open", map[string]string{"X-Request-Id": strings.Repeat("x", 100)})
	trequire.Len(t, rec.Header().Get("X-Request-Id"), 36)

	rec = get(r, "/open", map[string]string{"X-Request-Id": "has space"})
	trequire.NotEqual(t, "has space", rec.Header().Get("X-Request-Id"))

	rec = get(r, "/open", nil)
	trequire.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRecovery(t *testing.T) {
	rec := get(newEngine(stubAuth{}), "/panic", nil)
	trequire.Equal(t, http.StatusInternalServerError, rec.Code)
	trequire.Contains(t, rec.Body.String(), "internal_server_error")
}

func TestCORS(t *testing.T) {
	r := newEngine(stubAuth{})

	rec := get(r, "/open", map[string]string{"Origin": "https://forest.example"})
	trequire.Equal(t, "https://forest.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = get(r, "/open", map[string]string{"Origin": "https://evil.example"})
	trequire.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/open", nil)
	req.Header.Set("Origin", "https://forest.example")
	out := httptest.NewRecorder()
	r.ServeHTTP(out, req)
	trequire.Equal(t, http.StatusNoContent, out.Code)
}
