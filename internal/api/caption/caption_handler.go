package caption

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/signbridge/signbridge-api/app/observability/metrics"
	"github.com/signbridge/signbridge-api/internal/api"
	"github.com/signbridge/signbridge-api/internal/api/auth"
	"github.com/signbridge/signbridge-api/internal/types"
)

// CaptionHandler handles HTTP requests for caption sessions.
type CaptionHandler struct {
	captionService CaptionService
	logger         *slog.Logger
}

func NewCaptionHandler(captionService CaptionService, logger *slog.Logger) *CaptionHandler {
	return &CaptionHandler{
		captionService: captionService,
		logger:         logger,
	}
}

func (h *CaptionHandler) callerAndSession(ctx context.Context, r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		return uuid.Nil, uuid.Nil, fmt.Errorf("authentication required: %w", types.ErrUnauthenticated)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user ID: %w", types.ErrBadRequest)
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid session ID in URL: %w", types.ErrBadRequest)
	}
	return userID, sessionID, nil
}

// CreateSession godoc
// @Summary      Start a caption session
// @Tags         Captions
// @Accept       json
// @Produce      json
// @Param        body body types.CreateCaptionSessionParams true "Session parameters"
// @Success      201 {object} types.CaptionSession
// @Failure      400 {object} types.Response "Bad Request"
// @Security     BearerAuth
// @Router       /captions/sessions [post]
func (h *CaptionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CaptionHandler").Start(r.Context(), "CreateSession", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/captions/sessions"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateSession"))

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

	var params types.CreateCaptionSessionParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.captionService.CreateSession(ctx, userID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create caption session", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, session)
}

func (h *CaptionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CaptionHandler").Start(r.Context(), "GetSession")
	defer span.End()

	userID, sessionID, err := h.callerAndSession(ctx, r)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	session, err := h.captionService.GetSession(ctx, userID, sessionID)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), "Caption session not found")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, session)
}

func (h *CaptionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CaptionHandler").Start(r.Context(), "ListSessions")
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

	sessions, err := h.captionService.ListSessions(ctx, userID)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), "Could not list caption sessions")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, sessions)
}

func (h *CaptionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CaptionHandler").Start(r.Context(), "EndSession")
	defer span.End()

	userID, sessionID, err := h.callerAndSession(ctx, r)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	if err := h.captionService.EndSession(ctx, userID, sessionID); err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Session ended"})
}

// SaveDraft is the target of the browser's debounced autosave.
func (h *CaptionHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CaptionHandler").Start(r.Context(), "SaveDraft")
	defer span.End()

	userID, sessionID, err := h.callerAndSession(ctx, r)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	var params types.SaveDraftParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.captionService.SaveDraft(ctx, userID, sessionID, params.Text); err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

func (h *CaptionHandler) AppendSegment(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CaptionHandler").Start(r.Context(), "AppendSegment")
	defer span.End()

	l := h.logger.With(slog.String("handler", "AppendSegment"))

	userID, sessionID, err := h.callerAndSession(ctx, r)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	var params types.AppendSegmentParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	segment, err := h.captionService.AppendSegment(ctx, userID, sessionID, params)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	metrics.Get().CaptionSegmentsTotal.Add(ctx, 1)
	api.WriteJSONResponse(w, r, http.StatusCreated, segment)
}

func (h *CaptionHandler) ListSegments(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CaptionHandler").Start(r.Context(), "ListSegments")
	defer span.End()

	userID, sessionID, err := h.callerAndSession(ctx, r)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	finalOnly := r.URL.Query().Get("final") == "true"
	segments, err := h.captionService.ListSegments(ctx, userID, sessionID, finalOnly)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, segments)
}

// ExportTranscript godoc
// @Summary      Download transcript
// @Description  Streams the final transcript as a text file attachment.
// @Tags         Captions
// @Produce      plain
// @Param        sessionID path string true "Caption session ID"
// @Success      200 {string} string "Transcript text"
// @Failure      404 {object} types.Response "Not Found"
// @Security     BearerAuth
// @Router       /captions/sessions/{sessionID}/export [get]
func (h *CaptionHandler) ExportTranscript(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CaptionHandler").Start(r.Context(), "ExportTranscript")
	defer span.End()

	userID, sessionID, err := h.callerAndSession(ctx, r)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	transcript, filename, err := h.captionService.ExportTranscript(ctx, userID, sessionID)
	if err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	metrics.Get().TranscriptExportsTotal.Add(ctx, 1)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(transcript)); err != nil {
		h.logger.ErrorContext(ctx, "Failed to write transcript body", slog.Any("error", err))
	}
}

func (h *CaptionHandler) SummarizeSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CaptionHandler").Start(r.Context(), "SummarizeSession")
	defer span.End()

	userID, sessionID, err := h.callerAndSession(ctx, r)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	summary, err := h.captionService.SummarizeSession(ctx, userID, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "Summary failed", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}

	metrics.Get().SummaryRequestsTotal.Add(ctx, 1)
	api.WriteJSONResponse(w, r, http.StatusOK, summary)
}
