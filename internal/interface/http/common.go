package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/SouzaGabriel26/onde-ir/internal/application"
	"github.com/SouzaGabriel26/onde-ir/internal/domain/entity"
	repo "github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
	"github.com/SouzaGabriel26/onde-ir/internal/interface/middleware"
	"github.com/SouzaGabriel26/onde-ir/pkg/response"
	"github.com/SouzaGabriel26/onde-ir/pkg/result"
	"github.com/SouzaGabriel26/onde-ir/pkg/validation"
)

// failureStatus maps an expected service failure to an HTTP status.
func failureStatus(f *result.Failure) int {
	switch f.Message {
	case application.MsgInvalidCredentials:
		return http.StatusUnauthorized
	case application.MsgEmailTaken, application.MsgUserNameTaken:
		return http.StatusConflict
	case application.MsgUserNotFound, application.MsgEmailNotRegistered:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func writeFailure(c *gin.Context, f *result.Failure) {
	response.Failure(c, failureStatus(f), f)
}

func writeInternal(c *gin.Context, logger *logrus.Logger, err error, msg string) {
	logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error(msg)
	response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

func requestMeta(c *gin.Context) application.RequestMeta {
	return application.RequestMeta{IP: middleware.ClientIP(c), UserAgent: c.GetHeader("User-Agent")}
}

// Auditor records auth actions best effort.
type Auditor struct {
	Repo   repo.AuditRepository
	Logger *logrus.Logger
}

func (a *Auditor) Record(c *gin.Context, userID, email, action string, metadata map[string]any) {
	if a == nil || a.Repo == nil {
		return
	}
	meta := requestMeta(c)
	entry := entity.AuditEntry{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  metadata,
	}
	// The request may be cancelled once the response is written.
	if err := a.Repo.InsertAuditLog(context.WithoutCancel(c.Request.Context()), entry); err != nil && a.Logger != nil {
		a.Logger.WithError(err).WithField("action", action).Warn("audit log insert failed")
	}
}
