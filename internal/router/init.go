package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SouzaGabriel26/onde-ir/internal/application"
	"github.com/SouzaGabriel26/onde-ir/internal/container"
	repo "github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
	"github.com/SouzaGabriel26/onde-ir/internal/infrastructure/memory"
	pginfra "github.com/SouzaGabriel26/onde-ir/internal/infrastructure/postgres"
	"github.com/SouzaGabriel26/onde-ir/internal/infrastructure/search"
	handlers "github.com/SouzaGabriel26/onde-ir/internal/interface/http"
	"github.com/SouzaGabriel26/onde-ir/internal/router/modules"
	"github.com/SouzaGabriel26/onde-ir/pkg/helpers"
	"github.com/SouzaGabriel26/onde-ir/pkg/response"
)

type AuthModuleDeps struct {
	Repo        repo.AuthRepository
	Audit       repo.AuditRepository
	AuthService *application.AuthService
	Passwords   *application.PasswordService
	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
}

func buildRepos() (repo.AuthRepository, repo.AuditRepository) {
	if pool := container.GetPGPool(); pool != nil {
		return pginfra.NewAuthRepository(pool), pginfra.NewAuditRepository(pool)
	}
	container.GetLogger().Warn("no postgres pool, using in-memory repositories")
	return memory.NewAuthRepository(), memory.NewAuditRepository()
}

func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()
	hasher := helpers.NewBcryptHasher(cfg.BcryptCost)
	authRepo, auditRepo := buildRepos()

	authSvc := application.NewAuthService(authRepo, hasher, jwt, cfg.AccessTTL, logger)
	if es := container.GetES(); es != nil {
		authSvc.Indexer = search.NewUserIndexer(es, cfg.ESUsersIndex)
	}
	pwdSvc := application.NewPasswordService(authRepo, hasher, jwt, cfg.ResetPasswordTTL, logger)

	var mailer handlers.ResetMailer
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		notifier := application.NewEmailNotifier(pub, cfg.AppName, cfg.ResetPasswordLink, cfg.ResetPasswordTTL)
		pwdSvc.Notifier = notifier
		mailer = notifier
	}

	var uploads handlers.UploadSigner
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		uploads = helpers.NewGCSUploader(gcs, cfg.GCSBucket, cfg.GCSUploadURLTTL)
	}

	audit := &handlers.Auditor{Repo: auditRepo, Logger: logger}
	cookies := helpers.NewSessionCookie(cfg.CookieDomain, cfg.CookieSecure)

	return AuthModuleDeps{
		Repo:        authRepo,
		Audit:       auditRepo,
		AuthService: authSvc,
		Passwords:   pwdSvc,
		AuthHandler: handlers.NewAuthHandler(authSvc, pwdSvc, cookies, audit, mailer, logger),
		UserHandler: handlers.NewUserHandler(authRepo, uploads, logger),
	}
}

// health reports whether the configured backing stores answer. Redis only
// degrades the status because rate limits fail open without it.
func health(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"postgres": "disabled", "redis": "disabled"}
		code := http.StatusOK
		if pool := container.GetPGPool(); pool != nil {
			status["postgres"] = "ok"
			if err := pool.Ping(ctx); err != nil {
				status["postgres"] = "down"
				code = http.StatusServiceUnavailable
			}
		}
		if rdb := container.GetRedis(); rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				status["redis"] = "degraded"
			}
		}
		if code != http.StatusOK {
			response.Error[any](c, code, "unhealthy", status)
			return
		}
		response.Success(c, http.StatusOK, status, "healthy", nil)
	})
}

// InitModules builds the module graph from the container and adds every
// module to r. Call it once at startup, before RegisterAll.
func InitModules(r *Registry) {
	r.Add(ModuleFunc(health))

	deps := buildAuthDeps()
	rdb := container.GetRedis()
	jwt := container.GetJWT()
	logger := container.GetLogger()

	r.Add(modules.NewAuthModule(deps.AuthHandler, deps.UserHandler, jwt, rdb, logger))
	r.Add(modules.NewUserModule(deps.UserHandler, deps.Repo, jwt, rdb, logger))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb, logger))
	}
}
