package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SouzaGabriel26/onde-ir/internal/domain/entity"
	repo "github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
	"github.com/SouzaGabriel26/onde-ir/internal/infrastructure/memory"
	"github.com/SouzaGabriel26/onde-ir/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

func newJWT() *helpers.JWTManager { return helpers.NewJWTManager("session-secret", "reset-secret") }

func mint(t *testing.T, jwt *helpers.JWTManager, sub string, purpose helpers.TokenPurpose) string {
	t.Helper()
	tok, _, err := jwt.GenerateAccessToken(helpers.TokenParams{SubjectID: sub, Purpose: purpose, ExpiresIn: time.Hour})
	require.NoError(t, err)
	return tok
}

func protected(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxUserIDKey)) })
	r.GET("/p", handlers...)
	return r
}

func TestAuth(t *testing.T) {
	jwt := newJWT()
	r := protected(Auth(jwt))

	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{"missing", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: mint(t, jwt, "u-1", helpers.PurposeSession)})
		}, http.StatusOK, "u-1"},
		{"bearer", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+mint(t, jwt, "u-2", helpers.PurposeSession))
		}, http.StatusOK, "u-2"},
		{"reset token", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+mint(t, jwt, "u-3", helpers.PurposeResetPassword))
		}, http.StatusUnauthorized, ""},
		{"garbage", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: "x.y.z"})
		}, http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	jwt := newJWT()
	store := memory.NewAuthRepository()
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, repo.CreateUserParams{Email: "admin@x.com", Name: "Admin", UserName: "admin", Password: "h"}))
	require.NoError(t, store.CreateUser(ctx, repo.CreateUserParams{Email: "user@x.com", Name: "User", UserName: "user", Password: "h"}))
	admin, _ := store.FindUserByEmail(ctx, "admin@x.com")
	user, _ := store.FindUserByEmail(ctx, "user@x.com")
	require.NoError(t, store.SetRole(admin.ID, entity.RoleAdmin))

	r := protected(Auth(jwt), RequireRole(store, entity.RoleAdmin, nil))

	for sub, status := range map[string]int{
		admin.ID:   http.StatusOK,
		user.ID:    http.StatusForbidden,
		"deleted1": http.StatusUnauthorized,
	} {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Bearer "+mint(t, jwt, sub, helpers.PurposeSession))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, status, w.Code, sub)
	}
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, ClientIP(c)) })

	cases := map[string]map[string]string{
		"203.0.113.7":  {"CF-Connecting-IP": "203.0.113.7", "X-Forwarded-For": "198.51.100.1"},
		"198.51.100.1": {"X-Forwarded-For": "198.51.100.1, 10.0.0.1"},
	}
	for want, headers := range cases {
		req := httptest.NewRequest(http.MethodGet, "/ip", nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Body.String())
	}
}

func TestRateLimit_NoRedisPassesThrough(t *testing.T) {
	r := protected(RateLimit(nil, Limit{Max: 1, Window: time.Minute}, KeyByIP(), nil, nil))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitKeys(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/sign-in", nil)
	c.Set("real_ip", "198.51.100.9")

	assert.Equal(t, "rl:ip:198.51.100.9", KeyByIP()(c))
	assert.Equal(t, "rl:path:/api/auth/sign-in:ip:198.51.100.9", KeyByIPAndPath()(c))
	assert.Equal(t, "rl:user:anon:ip:198.51.100.9", KeyByUserID()(c))
	c.Set(CtxUserIDKey, "u-1")
	assert.Equal(t, "rl:user:u-1", KeyByUserID()(c))

	assert.False(t, AllowPrivateIP()(c))
	c.Set("real_ip", "10.1.2.3")
	assert.True(t, AllowPrivateIP()(c))
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "3f8a1c2e-9b4d-4e6f-8a7b-1c2d3e4f5a6b")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "3f8a1c2e-9b4d-4e6f-8a7b-1c2d3e4f5a6b", w.Body.String())
}
