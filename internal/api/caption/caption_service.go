package caption

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/signbridge/signbridge-api/internal/types"
)

var _ CaptionService = (*CaptionServiceImpl)(nil)

// CaptionService is the business-logic contract for caption sessions.
type CaptionService interface {
	CreateSession(ctx context.Context, userID uuid.UUID, params types.CreateCaptionSessionParams) (*types.CaptionSession, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.CaptionSession, error)
	ListSessions(ctx context.Context, userID uuid.UUID) ([]types.CaptionSession, error)
	EndSession(ctx context.Context, userID, sessionID uuid.UUID) error
	SaveDraft(ctx context.Context, userID, sessionID uuid.UUID, text string) error
	AppendSegment(ctx context.Context, userID, sessionID uuid.UUID, params types.AppendSegmentParams) (*types.CaptionSegment, error)
	ListSegments(ctx context.Context, userID, sessionID uuid.UUID, finalOnly bool) ([]types.CaptionSegment, error)
	// ExportTranscript returns the plain-text transcript and a filename.
	ExportTranscript(ctx context.Context, userID, sessionID uuid.UUID) (string, string, error)
	SummarizeSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.SessionSummary, error)
}

type CaptionServiceImpl struct {
	repo       CaptionRepo
	summarizer Summarizer
	logger     *slog.Logger
}

// NewCaptionService accepts a nil summarizer; summaries then return
// ErrUnavailable.
func NewCaptionService(repo CaptionRepo, summarizer Summarizer, logger *slog.Logger) *CaptionServiceImpl {
	return &CaptionServiceImpl{
		repo:       repo,
		summarizer: summarizer,
		logger:     logger,
	}
}

func (s *CaptionServiceImpl) CreateSession(ctx context.Context, userID uuid.UUID, params types.CreateCaptionSessionParams) (*types.CaptionSession, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", types.ErrBadRequest)
	}
	return s.repo.CreateSession(ctx, userID, params)
}

func (s *CaptionServiceImpl) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.CaptionSession, error) {
	return s.repo.GetSession(ctx, userID, sessionID)
}

func (s *CaptionServiceImpl) ListSessions(ctx context.Context, userID uuid.UUID) ([]types.CaptionSession, error) {
	return s.repo.ListSessions(ctx, userID)
}

func (s *CaptionServiceImpl) EndSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	return s.repo.EndSession(ctx, userID, sessionID)
}

func (s *CaptionServiceImpl) SaveDraft(ctx context.Context, userID, sessionID uuid.UUID, text string) error {
	return s.repo.SaveDraft(ctx, userID, sessionID, text)
}

func (s *CaptionServiceImpl) AppendSegment(ctx context.Context, userID, sessionID uuid.UUID, params types.AppendSegmentParams) (*types.CaptionSegment, error) {
	if strings.TrimSpace(params.Text) == "" {
		return nil, fmt.Errorf("segment text is required: %w", types.ErrBadRequest)
	}
	return s.repo.AppendSegment(ctx, userID, sessionID, params)
}

func (s *CaptionServiceImpl) ListSegments(ctx context.Context, userID, sessionID uuid.UUID, finalOnly bool) ([]types.CaptionSegment, error) {
	return s.repo.ListSegments(ctx, userID, sessionID, finalOnly)
}

// ExportTranscript joins the final segments into the text the browser offers
// as a .txt download.
func (s *CaptionServiceImpl) ExportTranscript(ctx context.Context, userID, sessionID uuid.UUID) (string, string, error) {
	session, err := s.repo.GetSession(ctx, userID, sessionID)
	if err != nil {
		return "", "", err
	}

	segments, err := s.repo.ListSegments(ctx, userID, sessionID, true)
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
		b.WriteString("\n")
	}

	filename := buildExportFilename(session.Title)
	return b.String(), filename, nil
}

func (s *CaptionServiceImpl) SummarizeSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.SessionSummary, error) {
	if s.summarizer == nil {
		return nil, fmt.Errorf("summaries are not configured: %w", types.ErrUnavailable)
	}

	transcript, _, err := s.ExportTranscript(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("session has no final segments: %w", types.ErrBadRequest)
	}

	summary, model, err := s.summarizer.Summarize(ctx, transcript)
	if err != nil {
		return nil, err
	}

	return &types.SessionSummary{
		SessionID: sessionID,
		Summary:   summary,
		Model:     model,
	}, nil
}

// buildExportFilename slugs the session title into a safe attachment name.
func buildExportFilename(title string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, title)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "transcript"
	}
	return slug + ".txt"
}
