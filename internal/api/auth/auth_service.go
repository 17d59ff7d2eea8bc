package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"golang.org/x/crypto/bcrypt"

	"github.com/signbridge/signbridge-api/config"
	"github.com/signbridge/signbridge-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService is the business-logic contract for authentication.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, string, error)
	Register(ctx context.Context, username, email, password, role string) error
	RefreshSession(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error
	GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error)
	GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User) (*types.UserAuth, error)
	GenerateTokens(ctx context.Context, user *types.UserAuth) (accessToken string, refreshToken string, err error)
}

type AuthServiceImpl struct {
	repo   AuthRepo
	cfg    *config.Config
	logger *slog.Logger
}

func NewAuthService(repo AuthRepo, cfg *config.Config, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// Login verifies credentials and issues a token pair.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, string, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("email", email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// Same error as a bad password so callers can't probe for accounts.
			return "", "", fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
		}
		return "", "", fmt.Errorf("login failed: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		l.WarnContext(ctx, "Password mismatch")
		return "", "", fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
	}

	return s.GenerateTokens(ctx, user)
}

// Register validates input, hashes the password and creates the user. The
// profile row is created by the database signup trigger.
func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password, role string) error {
	if role == "" {
		role = types.RoleStudent
	}
	if !types.ValidRole(role) {
		return fmt.Errorf("role must be 'student' or 'teacher': %w", types.ErrBadRequest)
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", types.ErrBadRequest)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.repo.Register(ctx, username, email, string(hashedPassword), role)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", slog.String("userID", userID), slog.String("role", role))
	return nil
}

// RefreshSession rotates the refresh token and issues a new access token.
func (s *AuthServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	userID, err := s.repo.ValidateRefreshTokenAndGetUserID(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("refresh failed: %w", err)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("refresh failed: %w", err)
	}

	accessToken, newRefreshToken, err := s.GenerateTokens(ctx, user)
	if err != nil {
		return "", "", err
	}

	// Revoke the old token only after the new pair is safely stored.
	if err = s.repo.InvalidateRefreshToken(ctx, refreshToken); err != nil {
		s.logger.WarnContext(ctx, "Failed to revoke old refresh token", slog.Any("error", err))
	}

	return accessToken, newRefreshToken, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if err := s.repo.InvalidateRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// UpdatePassword verifies the old password, stores the new hash and revokes
// every outstanding refresh token for the user.
func (s *AuthServiceImpl) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("update password failed: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return fmt.Errorf("invalid old password: %w", types.ErrUnauthenticated)
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", types.ErrBadRequest)
	}

	newHashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err = s.repo.UpdatePassword(ctx, userID, string(newHashedPassword)); err != nil {
		return err
	}

	if err = s.repo.InvalidateAllUserRefreshTokens(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "Failed to revoke refresh tokens after password change", slog.Any("error", err))
	}
	return nil
}

func (s *AuthServiceImpl) InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error {
	return s.repo.InvalidateAllUserRefreshTokens(ctx, userID)
}

func (s *AuthServiceImpl) GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// GetOrCreateUserFromProvider maps a goth user onto a local account.
func (s *AuthServiceImpl) GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User) (*types.UserAuth, error) {
	if providerUser.Email == "" {
		return nil, fmt.Errorf("provider did not supply an email: %w", types.ErrBadRequest)
	}
	username := providerUser.NickName
	if username == "" {
		username = providerUser.Name
	}
	return s.repo.GetOrCreateProviderUser(ctx, provider, username, providerUser.Email)
}

// GenerateTokens mints a signed access token and stores a rotating refresh token.
func (s *AuthServiceImpl) GenerateTokens(ctx context.Context, user *types.UserAuth) (string, string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.JWT.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.JWT.Audience},
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken := uuid.NewString()
	expiresAt := now.Add(s.cfg.JWT.RefreshTokenTTL)
	if err = s.repo.StoreRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}
