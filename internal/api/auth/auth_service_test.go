package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/signbridge/signbridge-api/config"
	"github.com/signbridge/signbridge-api/internal/types"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) Register(ctx context.Context, username, email, hashedPassword, role string) (string, error) {
	args := m.Called(ctx, username, email, hashedPassword, role)
	return args.String(0), args.Error(1)
}

func (m *MockAuthRepo) UpdatePassword(ctx context.Context, userID, newHashedPassword string) error {
	args := m.Called(ctx, userID, newHashedPassword)
	return args.Error(0)
}

func (m *MockAuthRepo) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockAuthRepo) ValidateRefreshTokenAndGetUserID(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthRepo) InvalidateRefreshToken(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockAuthRepo) InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthRepo) GetOrCreateProviderUser(ctx context.Context, provider, username, email string) (*types.UserAuth, error) {
	args := m.Called(ctx, provider, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func gothUser(nickname, email string) goth.User {
	return goth.User{Provider: "google", NickName: nickname, Email: email}
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-access-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			Issuer:          "test-issuer",
			Audience:        "test-audience",
		},
	}
}

func TestLogin(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	logger := slog.Default()
	service := NewAuthService(mockRepo, testConfig(), logger)

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		email := "test@example.com"
		password := "password123"
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		user := &types.UserAuth{
			ID:       "user123",
			Username: "testuser",
			Email:    email,
			Password: string(hashedPassword),
			Role:     types.RoleStudent,
		}

		mockRepo.On("GetUserByEmail", ctx, email).Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

		accessToken, refreshToken, err := service.Login(ctx, email, password)

		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		ctx := context.Background()
		email := "missing@example.com"

		mockRepo.On("GetUserByEmail", ctx, email).Return(nil, types.ErrNotFound).Once()

		_, _, err := service.Login(ctx, email, "whatever123")

		// A missing account must be indistinguishable from a bad password.
		assert.Error(t, err)
		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		ctx := context.Background()
		email := "test@example.com"
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)

		user := &types.UserAuth{
			ID:       "user123",
			Email:    email,
			Password: string(hashedPassword),
		}

		mockRepo.On("GetUserByEmail", ctx, email).Return(user, nil).Once()

		_, _, err := service.Login(ctx, email, "wrong-password")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})
}

func TestRegister(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	logger := slog.Default()
	service := NewAuthService(mockRepo, testConfig(), logger)

	t.Run("DefaultsToStudent", func(t *testing.T) {
		ctx := context.Background()

		mockRepo.On("Register", ctx, "janedoe", "jane@example.com", mock.AnythingOfType("string"), types.RoleStudent).
			Return("new-user-id", nil).Once()

		err := service.Register(ctx, "janedoe", "jane@example.com", "password123", "")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("TeacherRoleAccepted", func(t *testing.T) {
		ctx := context.Background()

		mockRepo.On("Register", ctx, "profsmith", "smith@example.com", mock.AnythingOfType("string"), types.RoleTeacher).
			Return("new-user-id", nil).Once()

		err := service.Register(ctx, "profsmith", "smith@example.com", "password123", types.RoleTeacher)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("InvalidRole", func(t *testing.T) {
		err := service.Register(context.Background(), "bob", "bob@example.com", "password123", "admin")

		assert.ErrorIs(t, err, types.ErrBadRequest)
		mockRepo.AssertNotCalled(t, "Register")
	})

	t.Run("ShortPassword", func(t *testing.T) {
		err := service.Register(context.Background(), "bob", "bob@example.com", "short", "")

		assert.ErrorIs(t, err, types.ErrBadRequest)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		ctx := context.Background()

		mockRepo.On("Register", ctx, "janedoe", "jane@example.com", mock.AnythingOfType("string"), types.RoleStudent).
			Return("", types.ErrConflict).Once()

		err := service.Register(ctx, "janedoe", "jane@example.com", "password123", "")

		assert.ErrorIs(t, err, types.ErrConflict)
		mockRepo.AssertExpectations(t)
	})
}

func TestRefreshSession(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	logger := slog.Default()
	service := NewAuthService(mockRepo, testConfig(), logger)

	t.Run("RotatesToken", func(t *testing.T) {
		ctx := context.Background()
		oldToken := "old-refresh-token"
		user := &types.UserAuth{ID: "user123", Email: "test@example.com", Role: types.RoleStudent}

		mockRepo.On("ValidateRefreshTokenAndGetUserID", ctx, oldToken).Return(user.ID, nil).Once()
		mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()
		mockRepo.On("InvalidateRefreshToken", ctx, oldToken).Return(nil).Once()

		accessToken, newRefreshToken, err := service.RefreshSession(ctx, oldToken)

		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, newRefreshToken)
		assert.NotEqual(t, oldToken, newRefreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		ctx := context.Background()

		mockRepo.On("ValidateRefreshTokenAndGetUserID", ctx, "bogus").
			Return("", types.ErrUnauthenticated).Once()

		_, _, err := service.RefreshSession(ctx, "bogus")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})
}

func TestUpdatePassword(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	logger := slog.Default()
	service := NewAuthService(mockRepo, testConfig(), logger)

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		oldPassword := "old-password-123"
		hashedOld, _ := bcrypt.GenerateFromPassword([]byte(oldPassword), bcrypt.DefaultCost)
		user := &types.UserAuth{ID: "user123", Password: string(hashedOld)}

		mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil).Once()
		mockRepo.On("UpdatePassword", ctx, user.ID, mock.AnythingOfType("string")).Return(nil).Once()
		mockRepo.On("InvalidateAllUserRefreshTokens", ctx, user.ID).Return(nil).Once()

		err := service.UpdatePassword(ctx, user.ID, oldPassword, "new-password-456")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongOldPassword", func(t *testing.T) {
		ctx := context.Background()
		hashedOld, _ := bcrypt.GenerateFromPassword([]byte("real-old-password"), bcrypt.DefaultCost)
		user := &types.UserAuth{ID: "user123", Password: string(hashedOld)}

		mockRepo.On("GetUserByID", ctx, user.ID).Return(user, nil).Once()

		err := service.UpdatePassword(ctx, user.ID, "wrong-old", "new-password-456")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertNotCalled(t, "UpdatePassword")
	})
}

func TestGetOrCreateUserFromProvider(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	logger := slog.Default()
	service := NewAuthService(mockRepo, testConfig(), logger)

	t.Run("MissingEmail", func(t *testing.T) {
		_, err := service.GetOrCreateUserFromProvider(context.Background(), "google", gothUser("", ""))

		assert.ErrorIs(t, err, types.ErrBadRequest)
	})

	t.Run("UsesNickname", func(t *testing.T) {
		ctx := context.Background()
		user := &types.UserAuth{ID: "user123", Email: "jane@example.com", Role: types.RoleStudent}

		mockRepo.On("GetOrCreateProviderUser", ctx, "google", "janedoe", "jane@example.com").
			Return(user, nil).Once()

		got, err := service.GetOrCreateUserFromProvider(ctx, "google", gothUser("janedoe", "jane@example.com"))

		assert.NoError(t, err)
		assert.Equal(t, user, got)
		mockRepo.AssertExpectations(t)
	})
}

func TestLogin_RepoError(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	service := NewAuthService(mockRepo, testConfig(), slog.Default())

	ctx := context.Background()
	dbErr := errors.New("connection refused")
	mockRepo.On("GetUserByEmail", ctx, "test@example.com").Return(nil, dbErr).Once()

	_, _, err := service.Login(ctx, "test@example.com", "password123")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrUnauthenticated)
	mockRepo.AssertExpectations(t)
}
