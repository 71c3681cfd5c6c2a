package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SouzaGabriel26/onde-ir/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate")
)

// DuplicateError names the column whose unique constraint was violated.
type DuplicateError struct {
	Column string
}

func (e *DuplicateError) Error() string { return fmt.Sprintf("duplicate %s", e.Column) }
func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// User columns selectable through FindUserByID.
const (
	ColumnID        = "id"
	ColumnEmail     = "email"
	ColumnName      = "name"
	ColumnUserName  = "user_name"
	ColumnPassword  = "password"
	ColumnUserRole  = "user_role"
	ColumnAvatarURL = "avatar_url"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
)

// ProfileColumns is every user column except the password hash.
var ProfileColumns = []string{
	ColumnID, ColumnEmail, ColumnName, ColumnUserName, ColumnUserRole,
	ColumnAvatarURL, ColumnCreatedAt, ColumnUpdatedAt,
}

type CreateUserParams struct {
	Email     string
	Name      string
	UserName  string
	Password  string
	AvatarURL string
}

// AuthRepository is the persistence surface of the auth flows.
type AuthRepository interface {
	// FindUserByEmail and FindUserByUserName load id, email, name and password hash.
	FindUserByEmail(ctx context.Context, email string) (*entity.User, error)
	FindUserByUserName(ctx context.Context, userName string) (*entity.User, error)
	// FindUserByID loads only the requested columns; nil selects ProfileColumns.
	FindUserByID(ctx context.Context, id string, columns []string) (*entity.User, error)
	CreateUser(ctx context.Context, p CreateUserParams) error
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error

	CreateResetPasswordToken(ctx context.Context, userID, resetToken string) (string, error)
	FindResetPasswordToken(ctx context.Context, id string) (*entity.ResetPasswordToken, error)
	// MarkResetPasswordTokenUsed flips used to true only if it was false and
	// reports whether this call performed the flip.
	MarkResetPasswordTokenUsed(ctx context.Context, id string) (bool, error)
	// InvalidateResetPasswordTokens marks every unused grant of userID as used
	// and returns how many it flipped.
	InvalidateResetPasswordTokens(ctx context.Context, userID string) (int64, error)
}

// AuditRepository stores the auth audit trail.
type AuditRepository interface {
	InsertAuditLog(ctx context.Context, e entity.AuditEntry) error
}
