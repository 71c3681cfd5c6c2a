package application_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/SouzaGabriel26/onde-ir/internal/application"
	"github.com/SouzaGabriel26/onde-ir/internal/domain/entity"
	repo "github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
	"github.com/SouzaGabriel26/onde-ir/internal/infrastructure/memory"
	"github.com/SouzaGabriel26/onde-ir/internal/infrastructure/search"
	"github.com/SouzaGabriel26/onde-ir/pkg/helpers"
)

// MockAuthRepository is a testify mock of repository.AuthRepository.
type MockAuthRepository struct {
	mock.Mock
}

func (m *MockAuthRepository) user(args mock.Arguments) (*entity.User, error) {
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *MockAuthRepository) FindUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockAuthRepository) FindUserByUserName(ctx context.Context, userName string) (*entity.User, error) {
	return m.user(m.Called(ctx, userName))
}

func (m *MockAuthRepository) FindUserByID(ctx context.Context, id string, columns []string) (*entity.User, error) {
	return m.user(m.Called(ctx, id, columns))
}

func (m *MockAuthRepository) CreateUser(ctx context.Context, p repo.CreateUserParams) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockAuthRepository) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
}

func (m *MockAuthRepository) CreateResetPasswordToken(ctx context.Context, userID, resetToken string) (string, error) {
	args := m.Called(ctx, userID, resetToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthRepository) FindResetPasswordToken(ctx context.Context, id string) (*entity.ResetPasswordToken, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*entity.ResetPasswordToken)
	return t, args.Error(1)
}

func (m *MockAuthRepository) MarkResetPasswordTokenUsed(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthRepository) InvalidateResetPasswordTokens(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recordingIndexer struct {
	mu   sync.Mutex
	docs []search.UserDocument
}

func (r *recordingIndexer) IndexUser(_ context.Context, doc search.UserDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	changed []string
}

func (r *recordingNotifier) PasswordChanged(_ context.Context, to, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, to)
	return nil
}

type fixture struct {
	repo  *memory.AuthRepository
	jwt   *helpers.JWTManager
	clock *fakeClock
	auth  *application.AuthService
	pwd   *application.PasswordService
}

func newFixture() *fixture {
	clock := &fakeClock{t: time.Now()}
	jwt := helpers.NewJWTManager("session-secret", "reset-secret").WithClock(clock.Now)
	store := memory.NewAuthRepository()
	hasher := helpers.NewBcryptHasher(bcrypt.MinCost)
	return &fixture{
		repo:  store,
		jwt:   jwt,
		clock: clock,
		auth:  application.NewAuthService(store, hasher, jwt, 7*24*time.Hour, nil),
		pwd:   application.NewPasswordService(store, hasher, jwt, 5*time.Minute, nil),
	}
}

func newMockServices(m *MockAuthRepository) (*application.AuthService, *application.PasswordService, *helpers.JWTManager) {
	jwt := helpers.NewJWTManager("session-secret", "reset-secret")
	hasher := helpers.NewBcryptHasher(bcrypt.MinCost)
	return application.NewAuthService(m, hasher, jwt, time.Hour, nil),
		application.NewPasswordService(m, hasher, jwt, 5*time.Minute, nil),
		jwt
}

func anaSignUp() application.SignUpInput {
	return application.SignUpInput{
		Email:           "a@x.com",
		Name:            "Ana Lima",
		UserName:        "ana",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}
