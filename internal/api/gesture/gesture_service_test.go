package gesture

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/signbridge/signbridge-api/app/observability/metrics"
	"github.com/signbridge/signbridge-api/internal/types"
)

// MockGestureRepo is a mock implementation of the GestureRepo interface
type MockGestureRepo struct {
	mock.Mock
}

func (m *MockGestureRepo) SaveTranslation(ctx context.Context, userID uuid.UUID, codes []string, phrase string) (*types.GestureTranslation, error) {
	args := m.Called(ctx, userID, codes, phrase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GestureTranslation), args.Error(1)
}

func (m *MockGestureRepo) ListTranslations(ctx context.Context, userID uuid.UUID, limit int) ([]types.GestureTranslation, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.GestureTranslation), args.Error(1)
}

func TestClassifyFrameService(t *testing.T) {
	metrics.InitAppMetrics()
	mockRepo := new(MockGestureRepo)
	service := NewGestureService(mockRepo, slog.Default())

	t.Run("DetectedFrame", func(t *testing.T) {
		lm := frame(pt(0.5, 0.5), pt(0.52, 0.5), pt(0.55, 0.5), pt(0.6, 0.5), pt(0.65, 0.5))

		resp := service.ClassifyFrame(context.Background(), lm)

		assert.True(t, resp.Detected)
		assert.Equal(t, "A", resp.Code)
	})

	t.Run("UndetectedFrame", func(t *testing.T) {
		resp := service.ClassifyFrame(context.Background(), nil)

		assert.False(t, resp.Detected)
		assert.Empty(t, resp.Code)
	})
}

func TestTranslate(t *testing.T) {
	metrics.InitAppMetrics()
	mockRepo := new(MockGestureRepo)
	service := NewGestureService(mockRepo, slog.Default())
	userID := uuid.New()

	t.Run("KnownSequencePersisted", func(t *testing.T) {
		ctx := context.Background()
		codes := []string{"A"}

		mockRepo.On("SaveTranslation", ctx, userID, codes, "Hello").
			Return(&types.GestureTranslation{ID: uuid.New(), UserID: userID, Codes: codes, Phrase: "Hello"}, nil).Once()

		resp, err := service.Translate(ctx, userID, codes)

		assert.NoError(t, err)
		assert.Equal(t, "Hello", resp.Phrase)
		assert.Equal(t, codes, resp.Codes)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmptySequenceNotPersisted", func(t *testing.T) {
		resp, err := service.Translate(context.Background(), userID, nil)

		assert.NoError(t, err)
		assert.Equal(t, "Unknown gesture", resp.Phrase)
		mockRepo.AssertNotCalled(t, "SaveTranslation")
	})

	t.Run("HistoryWriteFailureTolerated", func(t *testing.T) {
		ctx := context.Background()
		codes := []string{"B"}

		mockRepo.On("SaveTranslation", ctx, userID, codes, "Stop").
			Return(nil, errors.New("connection refused")).Once()

		resp, err := service.Translate(ctx, userID, codes)

		// The phrase still comes back even if the history row was lost.
		assert.NoError(t, err)
		assert.Equal(t, "Stop", resp.Phrase)
		mockRepo.AssertExpectations(t)
	})
}

func TestHistory(t *testing.T) {
	metrics.InitAppMetrics()
	mockRepo := new(MockGestureRepo)
	service := NewGestureService(mockRepo, slog.Default())
	userID := uuid.New()

	t.Run("ClampsLimit", func(t *testing.T) {
		ctx := context.Background()
		rows := []types.GestureTranslation{{ID: uuid.New(), UserID: userID, Phrase: "Hello"}}

		mockRepo.On("ListTranslations", ctx, userID, defaultHistoryLimit).Return(rows, nil).Once()

		got, err := service.History(ctx, userID, 0)

		assert.NoError(t, err)
		assert.Len(t, got, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("PassesExplicitLimit", func(t *testing.T) {
		ctx := context.Background()

		mockRepo.On("ListTranslations", ctx, userID, 10).Return([]types.GestureTranslation{}, nil).Once()

		_, err := service.History(ctx, userID, 10)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}
