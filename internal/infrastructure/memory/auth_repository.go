// Package memory provides in-process implementations of the domain
// repositories with the same observable semantics as the Postgres ones.
// They back the service and HTTP tests and local runs without a database.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SouzaGabriel26/onde-ir/internal/domain/entity"
	"github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
)

type AuthRepository struct {
	mu     sync.Mutex
	users  map[string]*entity.User
	tokens map[string]*entity.ResetPasswordToken
	now    func() time.Time
}

func NewAuthRepository() *AuthRepository {
	return &AuthRepository{
		users:  map[string]*entity.User{},
		tokens: map[string]*entity.ResetPasswordToken{},
		now:    time.Now,
	}
}

func (r *AuthRepository) FindUserByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return credentials(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *AuthRepository) FindUserByUserName(_ context.Context, userName string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserName == userName {
			return credentials(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func credentials(u *entity.User) *entity.User {
	return &entity.User{ID: u.ID, Email: u.Email, Name: u.Name, Password: u.Password}
}

func (r *AuthRepository) FindUserByID(_ context.Context, id string, columns []string) (*entity.User, error) {
	if len(columns) == 0 {
		columns = repository.ProfileColumns
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := &entity.User{}
	for _, col := range columns {
		switch col {
		case repository.ColumnID:
			out.ID = u.ID
		case repository.ColumnEmail:
			out.Email = u.Email
		case repository.ColumnName:
			out.Name = u.Name
		case repository.ColumnUserName:
			out.UserName = u.UserName
		case repository.ColumnPassword:
			out.Password = u.Password
		case repository.ColumnUserRole:
			out.Role = u.Role
		case repository.ColumnAvatarURL:
			out.AvatarURL = u.AvatarURL
		case repository.ColumnCreatedAt:
			out.CreatedAt = u.CreatedAt
		case repository.ColumnUpdatedAt:
			out.UpdatedAt = u.UpdatedAt
		default:
			return nil, fmt.Errorf("find user by id: unknown column %q", col)
		}
	}
	return out, nil
}

func (r *AuthRepository) CreateUser(_ context.Context, p repository.CreateUserParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == p.Email {
			return &repository.DuplicateError{Column: repository.ColumnEmail}
		}
		if u.UserName == p.UserName {
			return &repository.DuplicateError{Column: repository.ColumnUserName}
		}
	}
	now := r.now()
	u := &entity.User{
		ID:        uuid.NewString(),
		Email:     p.Email,
		Name:      p.Name,
		UserName:  p.UserName,
		Password:  p.Password,
		Role:      entity.RoleUser,
		AvatarURL: p.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.users[u.ID] = u
	return nil
}

// SetRole changes a user's role; there is no service operation for it.
func (r *AuthRepository) SetRole(id string, role entity.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (r *AuthRepository) UpdateUserPassword(_ context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = passwordHash
	u.UpdatedAt = r.now()
	return nil
}

func (r *AuthRepository) CreateResetPasswordToken(_ context.Context, userID, resetToken string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return "", fmt.Errorf("create reset password token: unknown user %s", userID)
	}
	t := &entity.ResetPasswordToken{
		ID:         uuid.NewString(),
		UserID:     userID,
		ResetToken: resetToken,
		CreatedAt:  r.now(),
	}
	r.tokens[t.ID] = t
	return t.ID, nil
}

func (r *AuthRepository) FindResetPasswordToken(_ context.Context, id string) (*entity.ResetPasswordToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *AuthRepository) MarkResetPasswordTokenUsed(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok || t.Used {
		return false, nil
	}
	t.Used = true
	return true, nil
}

func (r *AuthRepository) InvalidateResetPasswordTokens(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tokens {
		if t.UserID == userID && !t.Used {
			t.Used = true
			n++
		}
	}
	return n, nil
}

var _ repository.AuthRepository = (*AuthRepository)(nil)
