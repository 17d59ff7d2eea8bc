package auth

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/signbridge/signbridge-api/app/observability/metrics"
	"github.com/signbridge/signbridge-api/internal/api"
	"github.com/signbridge/signbridge-api/internal/types"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// countRegister records one completed register request, success or not.
func countRegister(ctx context.Context, status string) {
	metrics.Get().RegisterRequestsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)))
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a user account; the profile row is auto-created with role 'student' unless 'teacher' is requested.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.RegisterRequest true "Registration parameters"
// @Success      201 {object} types.Response "Registered"
// @Failure      400 {object} types.Response "Bad Request"
// @Failure      409 {object} types.Response "Email or username taken"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/register"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Register"))

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		countRegister(ctx, "error")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		countRegister(ctx, "error")
		api.ErrorResponse(w, r, http.StatusBadRequest, "username, email and password are required")
		return
	}

	if err := h.authService.Register(ctx, req.Username, req.Email, req.Password, req.Role); err != nil {
		l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
		span.RecordError(err)
		countRegister(ctx, "error")
		api.ErrorResponse(w, r, api.StatusFromError(err), "Registration failed: "+err.Error())
		return
	}

	countRegister(ctx, "success")
	api.WriteJSONResponse(w, r, http.StatusCreated, types.Response{Success: true, Message: "Registration successful"})
}

// Login godoc
// @Summary      Login
// @Description  Authenticates with email/password and returns an access and refresh token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.LoginRequest true "Credentials"
// @Success      200 {object} types.LoginResponse
// @Failure      401 {object} types.Response "Invalid credentials"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/login"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		l.WarnContext(ctx, "Login failed", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), "Invalid email or password")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Message:      "Login successful",
	})
}

// RefreshSession godoc
// @Summary      Refresh tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.RefreshTokenRequest true "Refresh token"
// @Success      200 {object} types.TokenResponse
// @Failure      401 {object} types.Response "Invalid or expired refresh token"
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "RefreshSession")
	defer span.End()

	var req types.RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.authService.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		h.logger.WarnContext(ctx, "Session refresh failed", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), "Could not refresh session")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Logout revokes the supplied refresh token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Logout")
	defer span.End()

	var req types.LogoutRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.Logout(ctx, req.RefreshToken); err != nil {
		h.logger.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), "Logout failed")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Logged out"})
}

// UpdatePassword changes the authenticated user's password and revokes all
// outstanding refresh tokens.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "UpdatePassword")
	defer span.End()

	userID, ok := GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.ChangePasswordRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.UpdatePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		h.logger.WarnContext(ctx, "Password update failed", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), "Password update failed")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Password updated"})
}

// Me returns the authenticated user's account record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Me")
	defer span.End()

	userID, ok := GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.authService.GetUserByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), "Could not load user")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, user)
}
