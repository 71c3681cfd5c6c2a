package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/SouzaGabriel26/onde-ir/internal/domain/entity"
	repo "github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
	"github.com/SouzaGabriel26/onde-ir/pkg/helpers"
	"github.com/SouzaGabriel26/onde-ir/pkg/response"
)

const CtxUserIDKey = "userID"

// Auth requires a valid session token, read from the access_token cookie or
// an "Authorization: Bearer" header, and puts its subject under CtxUserIDKey.
// Sessions are stateless: nothing beyond the signature and expiry is checked.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(helpers.AccessTokenCookie)
		}
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims := jwt.VerifyToken(token, helpers.PurposeSession)
		if claims == nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, claims.UserID())
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireRole must run after Auth. Roles are read from the store on every
// request so a demotion takes effect without waiting for the token to expire.
func RequireRole(users repo.AuthRepository, role entity.Role, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserIDKey)
		u, err := users.FindUserByID(c.Request.Context(), uid, []string{repo.ColumnID, repo.ColumnUserRole})
		switch {
		case errors.Is(err, repo.ErrNotFound):
			response.Error[any](c, http.StatusUnauthorized, "unknown user", nil)
			c.Abort()
			return
		case err != nil:
			if logger != nil {
				logger.WithError(err).WithField("user_id", uid).Error("load user role failed")
			}
			response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
			c.Abort()
			return
		}
		if u.Role != role {
			response.Error[any](c, http.StatusForbidden, "forbidden", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
