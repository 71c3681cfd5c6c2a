package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/SouzaGabriel26/onde-ir/internal/application"
	"github.com/SouzaGabriel26/onde-ir/internal/interface/middleware"
	"github.com/SouzaGabriel26/onde-ir/pkg/helpers"
	"github.com/SouzaGabriel26/onde-ir/pkg/response"
)

// ResetMailer delivers the reset link produced by Forgot.
type ResetMailer interface {
	ResetPasswordRequested(ctx context.Context, to, name, tokenID string, meta application.RequestMeta) error
}

type AuthHandler struct {
	Auth     *application.AuthService
	Password *application.PasswordService
	Cookies  *helpers.SessionCookie
	Audit    *Auditor
	// Mailer is nil when sending is disabled.
	Mailer ResetMailer
	Logger *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, pwd *application.PasswordService, cookies *helpers.SessionCookie, audit *Auditor, mailer ResetMailer, logger *logrus.Logger) *AuthHandler {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &AuthHandler{Auth: auth, Password: pwd, Cookies: cookies, Audit: audit, Mailer: mailer, Logger: logger}
}

// SignUp POST /api/auth/sign-up
func (h *AuthHandler) SignUp(c *gin.Context) {
	var in application.SignUpInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Auth.SignUp(c.Request.Context(), in)
	if err != nil {
		writeInternal(c, h.Logger, err, "sign up failed")
		return
	}
	if res.Failed() {
		writeFailure(c, res.Error)
		return
	}
	h.Audit.Record(c, "", in.Email, "sign_up", map[string]any{"user_name": in.UserName})
	response.Success(c, http.StatusCreated, *res.Data, "account created", nil)
}

// SignIn POST /api/auth/sign-in sets the session cookie and also returns the token.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var in application.SignInInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Auth.SignIn(c.Request.Context(), in)
	if err != nil {
		writeInternal(c, h.Logger, err, "sign in failed")
		return
	}
	if res.Failed() {
		h.Audit.Record(c, "", in.Email, "sign_in_failed", nil)
		writeFailure(c, res.Error)
		return
	}
	h.Cookies.Set(c, res.Data.AccessToken, res.Data.ExpiresAt)
	h.Audit.Record(c, res.Data.UserID, in.Email, "sign_in_ok", nil)
	response.Success(c, http.StatusOK, *res.Data, "signed in", map[string]any{"access_expires_at": res.Data.ExpiresAt})
}

// SignOut POST /api/auth/sign-out
func (h *AuthHandler) SignOut(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"signed_out": true}, "signed out", nil)
}

// ForgotPassword POST /api/auth/forgot-password. The grant id only travels by
// email; the response never carries it.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var in application.ForgotInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Password.Forgot(c.Request.Context(), in)
	if err != nil {
		writeInternal(c, h.Logger, err, "forgot password failed")
		return
	}
	if res.Failed() {
		h.Audit.Record(c, "", in.Email, "forgot_unknown", nil)
		writeFailure(c, res.Error)
		return
	}

	enqueued := false
	if h.Mailer != nil {
		if err := h.Mailer.ResetPasswordRequested(c.Request.Context(), in.Email, res.Data.Name, res.Data.ResetPasswordTokenID, requestMeta(c)); err != nil {
			h.Logger.WithError(err).Warn("enqueue reset password email failed")
		} else {
			enqueued = true
		}
	}
	h.Audit.Record(c, "", in.Email, "forgot_issue", map[string]any{"enqueued": enqueued})
	response.Success[any](c, http.StatusAccepted, map[string]any{"enqueued": enqueued}, "reset instructions sent", nil)
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var in application.ResetInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.Password.Reset(c.Request.Context(), in)
	if err != nil {
		writeInternal(c, h.Logger, err, "reset password failed")
		return
	}
	if res.Failed() {
		h.Audit.Record(c, "", "", "reset_failed", map[string]any{"reason": res.Error.Message})
		writeFailure(c, res.Error)
		return
	}
	h.Audit.Record(c, "", "", "reset_ok", map[string]any{"reset_password_token_id": in.ResetPasswordTokenID})
	response.Success(c, http.StatusOK, *res.Data, "password reset", nil)
}

type changePasswordRequest struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

// ChangePassword POST /api/auth/change-password (auth required). The user is
// always the session subject.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	uid := c.GetString(middleware.CtxUserIDKey)
	res, err := h.Password.Change(c.Request.Context(), application.ChangeInput{
		UserID:             uid,
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		writeInternal(c, h.Logger, err, "change password failed")
		return
	}
	if res.Failed() {
		h.Audit.Record(c, uid, "", "change_failed", map[string]any{"reason": res.Error.Message})
		writeFailure(c, res.Error)
		return
	}
	h.Audit.Record(c, uid, "", "change_ok", nil)
	response.Success(c, http.StatusOK, *res.Data, "password changed", nil)
}
