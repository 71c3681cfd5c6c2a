package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
)

func TestMapInsertError_UniqueViolation(t *testing.T) {
	cases := map[string]string{
		"users_email_key":     repository.ColumnEmail,
		"users_user_name_key": repository.ColumnUserName,
	}
	for constraint, column := range cases {
		err := mapInsertError("create user", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint})

		var dup *repository.DuplicateError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, column, dup.Column)
		assert.True(t, errors.Is(err, repository.ErrDuplicate))
	}
}

func TestMapInsertError_Other(t *testing.T) {
	cause := errors.New("connection reset")
	err := mapInsertError("create user", cause)

	assert.False(t, errors.Is(err, repository.ErrDuplicate))
	assert.True(t, errors.Is(err, cause))
}

func TestFindUserByID_RejectsUnknownColumn(t *testing.T) {
	repo := NewAuthRepository(nil)

	_, err := repo.FindUserByID(context.Background(), uuid.NewString(), []string{"id; DROP TABLE users"})
	assert.Error(t, err)
}

// The tests below need a migrated database in TEST_DATABASE_URL.
func testRepo(t *testing.T) *AuthRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := NewPool(context.Background(), PoolOptions{DSN: dsn, MaxConns: 8})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewAuthRepository(pool)
}

func createTestUser(t *testing.T, repo *AuthRepository) string {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	email := "user-" + suffix + "@example.com"
	require.NoError(t, repo.CreateUser(ctx, repository.CreateUserParams{
		Email: email, Name: "Test User", UserName: "user_" + suffix, Password: "hash",
	}))
	u, err := repo.FindUserByEmail(ctx, email)
	require.NoError(t, err)
	return u.ID
}

func TestIntegration_DuplicateUser(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	userID := createTestUser(t, repo)

	u, err := repo.FindUserByID(ctx, userID, nil)
	require.NoError(t, err)
	assert.Empty(t, u.Password)

	err = repo.CreateUser(ctx, repository.CreateUserParams{Email: u.Email, Name: "Other", UserName: "other_" + uuid.NewString()[:8], Password: "x"})
	var dup *repository.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, repository.ColumnEmail, dup.Column)
}

func TestIntegration_MarkResetPasswordTokenUsedAtMostOnce(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	userID := createTestUser(t, repo)

	id, err := repo.CreateResetPasswordToken(ctx, userID, "signed")
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.MarkResetPasswordTokenUsed(ctx, id)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	tok, err := repo.FindResetPasswordToken(ctx, id)
	require.NoError(t, err)
	assert.True(t, tok.Used)
}

func TestIntegration_InvalidateResetPasswordTokens(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	userID := createTestUser(t, repo)

	first, err := repo.CreateResetPasswordToken(ctx, userID, "one")
	require.NoError(t, err)
	second, err := repo.CreateResetPasswordToken(ctx, userID, "two")
	require.NoError(t, err)

	n, err := repo.InvalidateResetPasswordTokens(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, id := range []string{first, second} {
		ok, err := repo.MarkResetPasswordTokenUsed(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}
