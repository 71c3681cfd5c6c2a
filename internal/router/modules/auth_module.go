package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/SouzaGabriel26/onde-ir/internal/interface/http"
	"github.com/SouzaGabriel26/onde-ir/internal/interface/middleware"
	"github.com/SouzaGabriel26/onde-ir/pkg/helpers"
)

// AuthModule serves /api/auth/*. All routes are rate limited per client and
// route; change-password additionally per user.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Users   *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewAuthModule(h *handlers.AuthHandler, users *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *AuthModule {
	return &AuthModule{Handler: h, Users: users, JWT: jwt, Redis: rdb, Logger: logger}
}

func (m *AuthModule) limit(max int) gin.HandlerFunc {
	return middleware.RateLimit(m.Redis, middleware.Limit{Max: max, Window: time.Minute}, middleware.KeyByIPAndPath(), nil, m.Logger)
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")

	a.POST("/sign-up", m.limit(10), m.Handler.SignUp)
	a.POST("/sign-in", m.limit(10), m.Handler.SignIn)
	a.POST("/sign-out", m.Handler.SignOut)
	a.POST("/forgot-password", m.limit(5), m.Handler.ForgotPassword)
	a.POST("/reset-password", m.limit(10), m.Handler.ResetPassword)
	a.POST("/avatar-upload-url", m.limit(10), m.Users.AvatarUploadURL)

	a.POST("/change-password",
		middleware.Auth(m.JWT),
		middleware.RateLimit(m.Redis, middleware.Limit{Max: 5, Window: time.Minute}, middleware.KeyByUserID(), nil, m.Logger),
		m.Handler.ChangePassword,
	)
}
