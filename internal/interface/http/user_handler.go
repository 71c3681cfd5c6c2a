package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	repo "github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
	"github.com/SouzaGabriel26/onde-ir/internal/interface/middleware"
	"github.com/SouzaGabriel26/onde-ir/pkg/helpers"
	"github.com/SouzaGabriel26/onde-ir/pkg/response"
	"github.com/SouzaGabriel26/onde-ir/pkg/validation"
)

// UploadSigner hands out direct-to-bucket upload URLs.
type UploadSigner interface {
	SignUpload(ctx context.Context, objectPath, contentType string) (helpers.UploadGrant, error)
}

type UserHandler struct {
	Repo repo.AuthRepository
	// Uploads is nil when no bucket is configured.
	Uploads UploadSigner
	Logger  *logrus.Logger
}

func NewUserHandler(repo repo.AuthRepository, uploads UploadSigner, logger *logrus.Logger) *UserHandler {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &UserHandler{Repo: repo, Uploads: uploads, Logger: logger}
}

// Me GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	h.writeProfile(c, c.GetString(middleware.CtxUserIDKey))
}

// GetUser GET /api/admin/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if v := validation.Validate(validation.Payload{validation.FieldUserID: id}, validation.Require(validation.FieldUserID)); v.Failed() {
		writeFailure(c, v.Error)
		return
	}
	h.writeProfile(c, id)
}

func (h *UserHandler) writeProfile(c *gin.Context, id string) {
	u, err := h.Repo.FindUserByID(c.Request.Context(), id, nil)
	if errors.Is(err, repo.ErrNotFound) {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	if err != nil {
		writeInternal(c, h.Logger, err, "load profile failed")
		return
	}
	response.Success(c, http.StatusOK, u.Profile(), "profile", nil)
}

type avatarUploadRequest struct {
	ContentType string `json:"content_type" binding:"required,oneof=image/png image/jpeg image/webp"`
}

var avatarExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// AvatarUploadURL POST /api/auth/avatar-upload-url returns a signed PUT URL
// plus the public URL to send as avatar_url on sign-up.
func (h *UserHandler) AvatarUploadURL(c *gin.Context) {
	var req avatarUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	if h.Uploads == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "uploads are disabled", nil)
		return
	}
	object := "avatars/" + uuid.NewString() + avatarExt[req.ContentType]
	grant, err := h.Uploads.SignUpload(c.Request.Context(), object, req.ContentType)
	if err != nil {
		writeInternal(c, h.Logger, err, "sign avatar upload failed")
		return
	}
	response.Success(c, http.StatusOK, grant, "upload url issued", nil)
}
