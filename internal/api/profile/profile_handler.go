package profile

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/signbridge/signbridge-api/internal/api"
	"github.com/signbridge/signbridge-api/internal/api/auth"
	"github.com/signbridge/signbridge-api/internal/types"
)

// ProfileHandler handles HTTP requests for user profiles.
type ProfileHandler struct {
	profileService ProfileService
	logger         *slog.Logger
}

func NewProfileHandler(profileService ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// GetMyProfile godoc
// @Summary      Get own profile
// @Description  Returns the caller's profile; falls back to role 'student' when the row cannot be read.
// @Tags         Profiles
// @Produce      json
// @Success      200 {object} types.UserProfile
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /profiles/me [get]
func (h *ProfileHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ProfileHandler").Start(r.Context(), "GetMyProfile", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/profiles/me"),
	))
	defer span.End()

	userID, ok := callerID(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	p := h.profileService.GetProfile(ctx, userID)
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// UpdateMyProfile updates display name and, for teachers, role.
func (h *ProfileHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ProfileHandler").Start(r.Context(), "UpdateMyProfile", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/profiles/me"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdateMyProfile"))

	userID, ok := callerID(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	role, _ := auth.GetUserRoleFromContext(ctx)

	var params types.UpdateProfileParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.profileService.UpdateProfile(ctx, userID, role, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// ListStudents is the teacher-only classroom roster.
func (h *ProfileHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ProfileHandler").Start(r.Context(), "ListStudents", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/profiles/students"),
	))
	defer span.End()

	students, err := h.profileService.ListStudents(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list students", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), "Could not list students")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, students)
}

// callerID reads and parses the authenticated user ID from the context.
func callerID(ctx context.Context) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
