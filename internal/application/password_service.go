package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
	"github.com/SouzaGabriel26/onde-ir/pkg/helpers"
	"github.com/SouzaGabriel26/onde-ir/pkg/result"
	"github.com/SouzaGabriel26/onde-ir/pkg/validation"
)

// PasswordNotifier tells a user their password was changed.
type PasswordNotifier interface {
	PasswordChanged(ctx context.Context, to, name string) error
}

type PasswordService struct {
	Repo     repo.AuthRepository
	Hasher   helpers.PasswordHasher
	JWT      *helpers.JWTManager
	ResetTTL time.Duration
	Logger   *logrus.Logger
	// Notifier is optional; notification failures are only logged.
	Notifier PasswordNotifier
}

func NewPasswordService(repo repo.AuthRepository, hasher helpers.PasswordHasher, jwt *helpers.JWTManager, resetTTL time.Duration, logger *logrus.Logger) *PasswordService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &PasswordService{
		Repo:     repo,
		Hasher:   hasher,
		JWT:      jwt,
		ResetTTL: resetTTL,
		Logger:   logger,
	}
}

type ForgotInput struct {
	Email string `json:"email"`
}

type ForgotOutput struct {
	ResetPasswordTokenID string `json:"reset_password_token_id"`
	Name                 string `json:"name"`
}

// Forgot issues a reset grant for the account behind email. The signed token
// stays server-side; only its record id leaves in the output.
func (s *PasswordService) Forgot(ctx context.Context, in ForgotInput) (result.Result[ForgotOutput], error) {
	p := validation.Payload{}
	put(p, validation.FieldEmail, in.Email)
	if v := validation.Validate(p, validation.Require(validation.FieldEmail)); v.Failed() {
		return result.FromFailure[ForgotOutput](v.Error), nil
	}

	u, err := s.Repo.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) {
		return fail[ForgotOutput](MsgEmailNotRegistered, validation.FieldEmail), nil
	}
	if err != nil {
		return result.Result[ForgotOutput]{}, fmt.Errorf("forgot password: %w", err)
	}

	token, _, err := s.JWT.GenerateAccessToken(helpers.TokenParams{
		SubjectID: u.ID,
		Purpose:   helpers.PurposeResetPassword,
		ExpiresIn: s.ResetTTL,
	})
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate reset token failed")
		return result.Result[ForgotOutput]{}, fmt.Errorf("forgot password: %w", err)
	}

	// A new grant supersedes any the user still holds.
	if _, err := s.Repo.InvalidateResetPasswordTokens(ctx, u.ID); err != nil {
		return result.Result[ForgotOutput]{}, fmt.Errorf("forgot password: %w", err)
	}
	id, err := s.Repo.CreateResetPasswordToken(ctx, u.ID, token)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("create reset token failed")
		return result.Result[ForgotOutput]{}, fmt.Errorf("forgot password: %w", err)
	}
	return result.Ok(ForgotOutput{ResetPasswordTokenID: id, Name: u.Name}), nil
}

type ResetInput struct {
	ResetPasswordTokenID string `json:"reset_password_token_id"`
	Password             string `json:"password"`
	ConfirmPassword      string `json:"confirm_password"`
}

// Reset sets a new password using a grant from Forgot. A grant succeeds at
// most once: it is claimed with a conditional update before the password is
// written. Unknown, used, expired and forged grants all fail the same way.
func (s *PasswordService) Reset(ctx context.Context, in ResetInput) (result.Result[result.Empty], error) {
	if in.Password != in.ConfirmPassword {
		return fail[result.Empty](MsgPasswordsMustMatch, validation.FieldPassword, validation.FieldConfirmPassword), nil
	}

	p := validation.Payload{}
	put(p, validation.FieldPassword, in.Password)
	put(p, validation.FieldConfirmPassword, in.ConfirmPassword)
	put(p, validation.FieldResetPasswordTokenID, in.ResetPasswordTokenID)
	if v := validation.Validate(p,
		validation.Require(validation.FieldPassword),
		validation.Require(validation.FieldConfirmPassword),
		validation.Require(validation.FieldResetPasswordTokenID),
	); v.Failed() {
		return result.FromFailure[result.Empty](v.Error), nil
	}

	invalid := fail[result.Empty](MsgInvalidToken)

	rec, err := s.Repo.FindResetPasswordToken(ctx, in.ResetPasswordTokenID)
	if errors.Is(err, repo.ErrNotFound) {
		return invalid, nil
	}
	if err != nil {
		return result.Result[result.Empty]{}, fmt.Errorf("reset password: %w", err)
	}
	if rec.Used {
		return invalid, nil
	}
	claims := s.JWT.VerifyToken(rec.ResetToken, helpers.PurposeResetPassword)
	if claims == nil || claims.UserID() != rec.UserID {
		s.Logger.WithField("reset_password_token_id", rec.ID).Debug("reset password: token rejected")
		return invalid, nil
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		s.Logger.WithError(err).Error("hash password failed")
		return result.Result[result.Empty]{}, fmt.Errorf("reset password: hash password: %w", err)
	}

	claimed, err := s.Repo.MarkResetPasswordTokenUsed(ctx, rec.ID)
	if err != nil {
		return result.Result[result.Empty]{}, fmt.Errorf("reset password: %w", err)
	}
	if !claimed {
		return invalid, nil
	}
	if err := s.Repo.UpdateUserPassword(ctx, rec.UserID, hash); err != nil {
		s.Logger.WithError(err).WithField("user_id", rec.UserID).Error("update password after claiming reset token failed")
		return result.Result[result.Empty]{}, fmt.Errorf("reset password: %w", err)
	}
	if _, err := s.Repo.InvalidateResetPasswordTokens(ctx, rec.UserID); err != nil {
		s.Logger.WithError(err).WithField("user_id", rec.UserID).Warn("invalidate sibling reset tokens failed")
	}

	s.notify(ctx, rec.UserID)
	return result.Ok(result.Empty{}), nil
}

type ChangeInput struct {
	UserID             string `json:"user_id"`
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

// Change replaces the password of a signed-in user after checking the current one.
func (s *PasswordService) Change(ctx context.Context, in ChangeInput) (result.Result[result.Empty], error) {
	p := validation.Payload{}
	put(p, validation.FieldUserID, in.UserID)
	put(p, validation.FieldCurrentPassword, in.CurrentPassword)
	put(p, validation.FieldNewPassword, in.NewPassword)
	put(p, validation.FieldConfirmNewPassword, in.ConfirmNewPassword)
	if v := validation.Validate(p,
		validation.Require(validation.FieldUserID),
		validation.Require(validation.FieldCurrentPassword),
		validation.Require(validation.FieldNewPassword),
		validation.Require(validation.FieldConfirmNewPassword),
	); v.Failed() {
		return result.FromFailure[result.Empty](v.Error), nil
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return fail[result.Empty](MsgPasswordsMustMatch, validation.FieldNewPassword, validation.FieldConfirmNewPassword), nil
	}

	u, err := s.Repo.FindUserByID(ctx, in.UserID, []string{repo.ColumnID, repo.ColumnPassword})
	if errors.Is(err, repo.ErrNotFound) {
		return fail[result.Empty](MsgUserNotFound), nil
	}
	if err != nil {
		return result.Result[result.Empty]{}, fmt.Errorf("change password: %w", err)
	}
	if !s.Hasher.Compare(in.CurrentPassword, u.Password) {
		return fail[result.Empty](MsgInvalidCurrentPassword, validation.FieldCurrentPassword), nil
	}

	hash, err := s.Hasher.Hash(in.NewPassword)
	if err != nil {
		s.Logger.WithError(err).Error("hash password failed")
		return result.Result[result.Empty]{}, fmt.Errorf("change password: hash password: %w", err)
	}
	if err := s.Repo.UpdateUserPassword(ctx, u.ID, hash); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("update password failed")
		return result.Result[result.Empty]{}, fmt.Errorf("change password: %w", err)
	}

	s.notify(ctx, u.ID)
	return result.Ok(result.Empty{}), nil
}

func (s *PasswordService) notify(ctx context.Context, userID string) {
	if s.Notifier == nil {
		return
	}
	u, err := s.Repo.FindUserByID(ctx, userID, []string{repo.ColumnEmail, repo.ColumnName})
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("load user for password notification failed")
		return
	}
	if err := s.Notifier.PasswordChanged(ctx, u.Email, u.Name); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("enqueue password changed email failed")
	}
}
