package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/SouzaGabriel26/onde-ir/internal/interface/middleware"
)

type DebugModule struct {
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewDebugModule(rdb *redis.Client, logger *logrus.Logger) *DebugModule {
	return &DebugModule{Redis: rdb, Logger: logger}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar, rate-limited per IP; private networks are not limited
	rl := middleware.RateLimit(m.Redis, middleware.Limit{Max: 120, Window: time.Minute}, middleware.KeyByIP(), middleware.AllowPrivateIP(), m.Logger)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
