package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/SouzaGabriel26/onde-ir/internal/domain/entity"
	"github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
)

const uniqueViolation = "23505"

type AuthRepository struct {
	db DBTX
}

func NewAuthRepository(db DBTX) *AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) FindUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findCredentials(ctx, `
		SELECT id, email, name, password
		FROM users
		WHERE email = $1
	`, email)
}

func (r *AuthRepository) FindUserByUserName(ctx context.Context, userName string) (*entity.User, error) {
	return r.findCredentials(ctx, `
		SELECT id, email, name, password
		FROM users
		WHERE user_name = $1
	`, userName)
}

func (r *AuthRepository) findCredentials(ctx context.Context, query string, arg string) (*entity.User, error) {
	u := &entity.User{}
	if err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Name, &u.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// userColumn returns the scan target of a selectable column; unknown names are rejected
// so the column list can be interpolated into the query.
func userColumn(u *entity.User, col string) (any, bool) {
	switch col {
	case repository.ColumnID:
		return &u.ID, true
	case repository.ColumnEmail:
		return &u.Email, true
	case repository.ColumnName:
		return &u.Name, true
	case repository.ColumnUserName:
		return &u.UserName, true
	case repository.ColumnPassword:
		return &u.Password, true
	case repository.ColumnUserRole:
		return &u.Role, true
	case repository.ColumnAvatarURL:
		return &u.AvatarURL, true
	case repository.ColumnCreatedAt:
		return &u.CreatedAt, true
	case repository.ColumnUpdatedAt:
		return &u.UpdatedAt, true
	}
	return nil, false
}

func (r *AuthRepository) FindUserByID(ctx context.Context, id string, columns []string) (*entity.User, error) {
	if len(columns) == 0 {
		columns = repository.ProfileColumns
	}
	u := &entity.User{}
	dest := make([]any, 0, len(columns))
	for _, col := range columns {
		d, ok := userColumn(u, col)
		if !ok {
			return nil, fmt.Errorf("find user by id: unknown column %q", col)
		}
		dest = append(dest, d)
	}
	// avatar_url is nullable; everything else is NOT NULL.
	selected := make([]string, len(columns))
	for i, col := range columns {
		if col == repository.ColumnAvatarURL {
			selected[i] = "COALESCE(avatar_url, '')"
		} else {
			selected[i] = col
		}
	}
	query := "SELECT " + strings.Join(selected, ", ") + " FROM users WHERE id = $1"
	if err := r.db.QueryRow(ctx, query, id).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *AuthRepository) CreateUser(ctx context.Context, p repository.CreateUserParams) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (email, name, user_name, password, avatar_url)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	`, p.Email, p.Name, p.UserName, p.Password, p.AvatarURL)
	if err != nil {
		return mapInsertError("create user", err)
	}
	return nil
}

func (r *AuthRepository) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET password = $1, updated_at = now()
		WHERE id = $2
	`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AuthRepository) CreateResetPasswordToken(ctx context.Context, userID, resetToken string) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, `
		INSERT INTO reset_password_tokens (user_id, reset_token)
		VALUES ($1, $2)
		RETURNING id
	`, userID, resetToken).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create reset password token: %w", err)
	}
	return id, nil
}

func (r *AuthRepository) FindResetPasswordToken(ctx context.Context, id string) (*entity.ResetPasswordToken, error) {
	t := &entity.ResetPasswordToken{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, reset_token, used, created_at
		FROM reset_password_tokens
		WHERE id = $1
	`, id).Scan(&t.ID, &t.UserID, &t.ResetToken, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find reset password token: %w", err)
	}
	return t, nil
}

// MarkResetPasswordTokenUsed is a conditional update; concurrent callers
// serialize on the row lock and only the first sees an affected row.
func (r *AuthRepository) MarkResetPasswordTokenUsed(ctx context.Context, id string) (bool, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE reset_password_tokens
		SET used = true
		WHERE id = $1 AND used = false
	`, id)
	if err != nil {
		return false, fmt.Errorf("mark reset password token used: %w", err)
	}
	return res.RowsAffected() == 1, nil
}

func (r *AuthRepository) InvalidateResetPasswordTokens(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE reset_password_tokens
		SET used = true
		WHERE user_id = $1 AND used = false
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("invalidate reset password tokens: %w", err)
	}
	return res.RowsAffected(), nil
}

func mapInsertError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		col := pgErr.ConstraintName
		switch {
		case strings.Contains(col, "user_name"):
			col = repository.ColumnUserName
		case strings.Contains(col, "email"):
			col = repository.ColumnEmail
		}
		return &repository.DuplicateError{Column: col}
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ repository.AuthRepository = (*AuthRepository)(nil)
