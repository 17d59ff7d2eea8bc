package gesture

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/signbridge/signbridge-api/app/observability/metrics"
	"github.com/signbridge/signbridge-api/internal/types"
)

const defaultHistoryLimit = 50

var _ GestureService = (*GestureServiceImpl)(nil)

// GestureService is the business-logic contract for gesture translation.
type GestureService interface {
	ClassifyFrame(ctx context.Context, landmarks []types.Landmark) types.ClassifyFrameResponse
	Translate(ctx context.Context, userID uuid.UUID, codes []string) (*types.TranslateResponse, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]types.GestureTranslation, error)
}

type GestureServiceImpl struct {
	repo   GestureRepo
	logger *slog.Logger
}

func NewGestureService(repo GestureRepo, logger *slog.Logger) *GestureServiceImpl {
	return &GestureServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

// ClassifyFrame never errors: a frame that matches no rule is reported as
// not detected, mirroring how a missed animation frame is simply dropped.
func (s *GestureServiceImpl) ClassifyFrame(ctx context.Context, landmarks []types.Landmark) types.ClassifyFrameResponse {
	start := time.Now()
	code, detected := ClassifyFrame(landmarks)

	m := metrics.Get()
	m.GestureFramesTotal.Add(ctx, 1)
	if detected {
		m.GestureFramesDetected.Add(ctx, 1)
	}
	m.ClassifyDurationSeconds.Record(ctx, time.Since(start).Seconds())

	return types.ClassifyFrameResponse{Code: code, Detected: detected}
}

// Translate resolves the phrase and records a history row. A history write
// failure is logged but does not fail the translation.
func (s *GestureServiceImpl) Translate(ctx context.Context, userID uuid.UUID, codes []string) (*types.TranslateResponse, error) {
	phrase := TranslateSequence(codes)

	if len(codes) > 0 {
		if _, err := s.repo.SaveTranslation(ctx, userID, codes, phrase); err != nil {
			s.logger.WarnContext(ctx, "Failed to persist translation history",
				slog.String("userID", userID.String()), slog.Any("error", err))
		}
	}

	return &types.TranslateResponse{Phrase: phrase, Codes: codes}, nil
}

func (s *GestureServiceImpl) History(ctx context.Context, userID uuid.UUID, limit int) ([]types.GestureTranslation, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}
	return s.repo.ListTranslations(ctx, userID, limit)
}
