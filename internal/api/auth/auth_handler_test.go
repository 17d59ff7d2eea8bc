package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/signbridge/signbridge-api/app/observability/metrics"
	"github.com/signbridge/signbridge-api/internal/types"
)

// MockAuthService is a mock implementation of the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password, role string) error {
	args := m.Called(ctx, username, email, password, role)
	return args.Error(0)
}

func (m *MockAuthService) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	args := m.Called(ctx, userID, oldPassword, newPassword)
	return args.Error(0)
}

func (m *MockAuthService) InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthService) GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthService) GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User) (*types.UserAuth, error) {
	args := m.Called(ctx, provider, providerUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthService) GenerateTokens(ctx context.Context, user *types.UserAuth) (string, string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.String(1), args.Error(2)
}

func TestLoginHandler(t *testing.T) {
	metrics.InitAppMetrics()
	mockService := new(MockAuthService)
	logger := slog.Default()
	handler := NewAuthHandler(mockService, logger)

	t.Run("Success", func(t *testing.T) {
		loginRequest := map[string]string{
			"email":    "test@example.com",
			"password": "password123",
		}
		body, _ := json.Marshal(loginRequest)

		mockService.On("Login", mock.Anything, "test@example.com", "password123").
			Return("access-token", "refresh-token", nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.Login(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp types.LoginResponse
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		loginRequest := map[string]string{
			"email":    "test@example.com",
			"password": "wrong",
		}
		body, _ := json.Marshal(loginRequest)

		mockService.On("Login", mock.Anything, "test@example.com", "wrong").
			Return("", "", types.ErrUnauthenticated).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.Login(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.Login(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Login")
	})
}

func TestRegisterHandler(t *testing.T) {
	metrics.InitAppMetrics()
	mockService := new(MockAuthService)
	logger := slog.Default()
	handler := NewAuthHandler(mockService, logger)

	t.Run("Success", func(t *testing.T) {
		registerRequest := types.RegisterRequest{
			Username: "janedoe",
			Email:    "jane@example.com",
			Password: "password123",
		}
		body, _ := json.Marshal(registerRequest)

		mockService.On("Register", mock.Anything, "janedoe", "jane@example.com", "password123", "").
			Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.Register(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingFields", func(t *testing.T) {
		body, _ := json.Marshal(types.RegisterRequest{Email: "jane@example.com"})

		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.Register(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Register")
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		registerRequest := types.RegisterRequest{
			Username: "janedoe",
			Email:    "jane@example.com",
			Password: "password123",
		}
		body, _ := json.Marshal(registerRequest)

		mockService.On("Register", mock.Anything, "janedoe", "jane@example.com", "password123", "").
			Return(types.ErrConflict).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.Register(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestRefreshSessionHandler(t *testing.T) {
	metrics.InitAppMetrics()
	mockService := new(MockAuthService)
	handler := NewAuthHandler(mockService, slog.Default())

	t.Run("Success", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"refresh_token": "old-token"})

		mockService.On("RefreshSession", mock.Anything, "old-token").
			Return("new-access", "new-refresh", nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.RefreshSession(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})
}
