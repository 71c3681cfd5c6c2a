package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SouzaGabriel26/onde-ir/internal/domain/entity"
	repo "github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
	"github.com/SouzaGabriel26/onde-ir/internal/infrastructure/search"
	"github.com/SouzaGabriel26/onde-ir/pkg/helpers"
	"github.com/SouzaGabriel26/onde-ir/pkg/result"
	"github.com/SouzaGabriel26/onde-ir/pkg/validation"
)

// UserIndexer publishes public profiles to the user directory.
type UserIndexer interface {
	IndexUser(ctx context.Context, doc search.UserDocument) error
}

type AuthService struct {
	Repo      repo.AuthRepository
	Hasher    helpers.PasswordHasher
	JWT       *helpers.JWTManager
	AccessTTL time.Duration
	Logger    *logrus.Logger
	// Indexer is optional; indexing is best effort.
	Indexer UserIndexer

	decoyOnce sync.Once
	decoyHash string
}

func NewAuthService(repo repo.AuthRepository, hasher helpers.PasswordHasher, jwt *helpers.JWTManager, accessTTL time.Duration, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &AuthService{
		Repo:      repo,
		Hasher:    hasher,
		JWT:       jwt,
		AccessTTL: accessTTL,
		Logger:    logger,
	}
}

type SignUpInput struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	UserName        string `json:"user_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	AvatarURL       string `json:"avatar_url"`
}

type SignUpOutput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserName string `json:"user_name"`
}

// SignUp registers a new account. Conflicts on email or user name are
// reported against the offending field, including when a concurrent
// sign-up wins the unique index after the lookups passed.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (result.Result[SignUpOutput], error) {
	if in.Password != in.ConfirmPassword {
		return fail[SignUpOutput](MsgPasswordsMustMatch, validation.FieldPassword, validation.FieldConfirmPassword), nil
	}

	p := validation.Payload{}
	put(p, validation.FieldEmail, in.Email)
	put(p, validation.FieldName, in.Name)
	put(p, validation.FieldUserName, in.UserName)
	put(p, validation.FieldPassword, in.Password)
	put(p, validation.FieldConfirmPassword, in.ConfirmPassword)
	put(p, validation.FieldAvatarURL, in.AvatarURL)
	if v := validation.Validate(p,
		validation.Require(validation.FieldEmail),
		validation.Require(validation.FieldName),
		validation.Require(validation.FieldUserName),
		validation.Require(validation.FieldPassword),
		validation.Require(validation.FieldConfirmPassword),
		validation.Optionally(validation.FieldAvatarURL),
	); v.Failed() {
		return result.FromFailure[SignUpOutput](v.Error), nil
	}

	taken, err := s.exists(ctx, s.Repo.FindUserByEmail, in.Email)
	if err != nil {
		return result.Result[SignUpOutput]{}, fmt.Errorf("sign up: %w", err)
	}
	if taken {
		return fail[SignUpOutput](MsgEmailTaken, validation.FieldEmail), nil
	}
	taken, err = s.exists(ctx, s.Repo.FindUserByUserName, in.UserName)
	if err != nil {
		return result.Result[SignUpOutput]{}, fmt.Errorf("sign up: %w", err)
	}
	if taken {
		return fail[SignUpOutput](MsgUserNameTaken, validation.FieldUserName), nil
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		s.Logger.WithError(err).Error("hash password failed")
		return result.Result[SignUpOutput]{}, fmt.Errorf("sign up: hash password: %w", err)
	}

	err = s.Repo.CreateUser(ctx, repo.CreateUserParams{
		Email:     in.Email,
		Name:      in.Name,
		UserName:  in.UserName,
		Password:  hash,
		AvatarURL: in.AvatarURL,
	})
	var dup *repo.DuplicateError
	switch {
	case errors.As(err, &dup) && dup.Column == repo.ColumnUserName:
		return fail[SignUpOutput](MsgUserNameTaken, validation.FieldUserName), nil
	case errors.As(err, &dup):
		return fail[SignUpOutput](MsgEmailTaken, validation.FieldEmail), nil
	case err != nil:
		s.Logger.WithError(err).WithField("user_name", in.UserName).Error("create user failed")
		return result.Result[SignUpOutput]{}, fmt.Errorf("sign up: %w", err)
	}

	s.index(ctx, search.UserDocument{
		Name:      in.Name,
		UserName:  in.UserName,
		AvatarURL: in.AvatarURL,
		CreatedAt: time.Now().UTC(),
	})

	return result.Ok(SignUpOutput{Email: in.Email, Name: in.Name, UserName: in.UserName}), nil
}

func (s *AuthService) exists(ctx context.Context, find func(context.Context, string) (*entity.User, error), key string) (bool, error) {
	_, err := find(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repo.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *AuthService) index(ctx context.Context, doc search.UserDocument) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.IndexUser(ctx, doc); err != nil {
		s.Logger.WithError(err).WithField("user_name", doc.UserName).Warn("index user failed")
	}
}

type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInOutput struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"-"`
	UserID      string    `json:"-"`
}

// SignIn exchanges credentials for a session token. An unknown email and a
// wrong password produce the same failure.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (result.Result[SignInOutput], error) {
	p := validation.Payload{}
	put(p, validation.FieldEmail, in.Email)
	put(p, validation.FieldPassword, in.Password)
	if v := validation.Validate(p,
		validation.Require(validation.FieldEmail),
		validation.Require(validation.FieldPassword),
	); v.Failed() {
		return result.FromFailure[SignInOutput](v.Error), nil
	}

	invalid := fail[SignInOutput](MsgInvalidCredentials, validation.FieldEmail, validation.FieldPassword)

	u, err := s.Repo.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) {
		// Spend the same bcrypt work as a real comparison.
		s.Hasher.Compare(in.Password, s.decoy())
		return invalid, nil
	}
	if err != nil {
		return result.Result[SignInOutput]{}, fmt.Errorf("sign in: %w", err)
	}
	if !s.Hasher.Compare(in.Password, u.Password) {
		s.Logger.WithField("user_id", u.ID).Debug("sign in: password mismatch")
		return invalid, nil
	}

	token, exp, err := s.JWT.GenerateAccessToken(helpers.TokenParams{
		SubjectID: u.ID,
		Purpose:   helpers.PurposeSession,
		ExpiresIn: s.AccessTTL,
	})
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return result.Result[SignInOutput]{}, fmt.Errorf("sign in: %w", err)
	}
	return result.Ok(SignInOutput{AccessToken: token, ExpiresAt: exp, UserID: u.ID}), nil
}

func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		h, err := s.Hasher.Hash("decoy-password")
		if err != nil {
			s.Logger.WithError(err).Warn("hash decoy password failed")
		}
		s.decoyHash = h
	})
	return s.decoyHash
}
