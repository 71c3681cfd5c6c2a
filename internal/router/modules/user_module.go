package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/SouzaGabriel26/onde-ir/internal/domain/entity"
	repo "github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
	handlers "github.com/SouzaGabriel26/onde-ir/internal/interface/http"
	"github.com/SouzaGabriel26/onde-ir/internal/interface/middleware"
	"github.com/SouzaGabriel26/onde-ir/pkg/helpers"
)

// UserModule wires the profile routes.
// Protected: GET /api/me
// Admin:     GET /api/admin/users/:id
type UserModule struct {
	Handler *handlers.UserHandler
	Repo    repo.AuthRepository
	JWT     *helpers.JWTManager
	Redis   *redis.Client
	Logger  *logrus.Logger
}

func NewUserModule(h *handlers.UserHandler, users repo.AuthRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *UserModule {
	return &UserModule{Handler: h, Repo: users, JWT: jwt, Redis: rdb, Logger: logger}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(
		middleware.Auth(m.JWT),
		middleware.RateLimit(m.Redis, middleware.Limit{Max: 120, Window: time.Minute}, middleware.KeyByUserID(), nil, m.Logger),
	)
	{
		auth.GET("/me", m.Handler.Me)
	}

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole(m.Repo, entity.RoleAdmin, m.Logger))
	{
		admin.GET("/users/:id", m.Handler.GetUser)
	}
}
