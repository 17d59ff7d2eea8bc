package gesture

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/signbridge/signbridge-api/internal/api"
	"github.com/signbridge/signbridge-api/internal/api/auth"
	"github.com/signbridge/signbridge-api/internal/types"
)

// GestureHandler handles HTTP requests for gesture classification and
// translation.
type GestureHandler struct {
	gestureService GestureService
	logger         *slog.Logger
}

func NewGestureHandler(gestureService GestureService, logger *slog.Logger) *GestureHandler {
	return &GestureHandler{
		gestureService: gestureService,
		logger:         logger,
	}
}

// ClassifyFrame godoc
// @Summary      Classify a single frame of hand landmarks
// @Description  Maps 21 normalized hand landmarks to a letter code. Frames
// @Description  matching no rule return detected=false.
// @Tags         Gestures
// @Accept       json
// @Produce      json
// @Param        body body types.ClassifyFrameRequest true "Hand landmarks"
// @Success      200 {object} types.ClassifyFrameResponse
// @Failure      400 {object} types.Response "Bad Request"
// @Security     BearerAuth
// @Router       /gestures/classify [post]
func (h *GestureHandler) ClassifyFrame(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GestureHandler").Start(r.Context(), "ClassifyFrame")
	defer span.End()

	var req types.ClassifyFrameRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp := h.gestureService.ClassifyFrame(ctx, req.Landmarks)
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Translate godoc
// @Summary      Translate a sequence of letter codes
// @Tags         Gestures
// @Accept       json
// @Produce      json
// @Param        body body types.TranslateRequest true "Letter codes"
// @Success      200 {object} types.TranslateResponse
// @Security     BearerAuth
// @Router       /gestures/translate [post]
func (h *GestureHandler) Translate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GestureHandler").Start(r.Context(), "Translate")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Translate"))

	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var req types.TranslateRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.gestureService.Translate(ctx, userID, req.Codes)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

func (h *GestureHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("GestureHandler").Start(r.Context(), "History")
	defer span.End()

	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	translations, err := h.gestureService.History(ctx, userID, limit)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), "Could not list translation history")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, translations)
}
