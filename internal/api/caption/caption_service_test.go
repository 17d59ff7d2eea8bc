package caption

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/signbridge/signbridge-api/internal/types"
)

// MockCaptionRepo is a mock implementation of the CaptionRepo interface
type MockCaptionRepo struct {
	mock.Mock
}

func (m *MockCaptionRepo) CreateSession(ctx context.Context, userID uuid.UUID, params types.CreateCaptionSessionParams) (*types.CaptionSession, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CaptionSession), args.Error(1)
}

func (m *MockCaptionRepo) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.CaptionSession, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CaptionSession), args.Error(1)
}

func (m *MockCaptionRepo) ListSessions(ctx context.Context, userID uuid.UUID) ([]types.CaptionSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.CaptionSession), args.Error(1)
}

func (m *MockCaptionRepo) EndSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	args := m.Called(ctx, userID, sessionID)
	return args.Error(0)
}

func (m *MockCaptionRepo) SaveDraft(ctx context.Context, userID, sessionID uuid.UUID, text string) error {
	args := m.Called(ctx, userID, sessionID, text)
	return args.Error(0)
}

func (m *MockCaptionRepo) AppendSegment(ctx context.Context, userID, sessionID uuid.UUID, params types.AppendSegmentParams) (*types.CaptionSegment, error) {
	args := m.Called(ctx, userID, sessionID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CaptionSegment), args.Error(1)
}

func (m *MockCaptionRepo) ListSegments(ctx context.Context, userID, sessionID uuid.UUID, finalOnly bool) ([]types.CaptionSegment, error) {
	args := m.Called(ctx, userID, sessionID, finalOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.CaptionSegment), args.Error(1)
}

// MockSummarizer is a mock implementation of the Summarizer interface
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, transcript string) (string, string, error) {
	args := m.Called(ctx, transcript)
	return args.String(0), args.String(1), args.Error(2)
}

func TestCreateSessionValidation(t *testing.T) {
	mockRepo := new(MockCaptionRepo)
	service := NewCaptionService(mockRepo, nil, slog.Default())

	t.Run("BlankTitleRejected", func(t *testing.T) {
		_, err := service.CreateSession(context.Background(), uuid.New(), types.CreateCaptionSessionParams{Title: "   "})

		assert.ErrorIs(t, err, types.ErrBadRequest)
		mockRepo.AssertNotCalled(t, "CreateSession")
	})
}

func TestAppendSegmentValidation(t *testing.T) {
	mockRepo := new(MockCaptionRepo)
	service := NewCaptionService(mockRepo, nil, slog.Default())

	_, err := service.AppendSegment(context.Background(), uuid.New(), uuid.New(), types.AppendSegmentParams{Text: ""})

	assert.ErrorIs(t, err, types.ErrBadRequest)
	mockRepo.AssertNotCalled(t, "AppendSegment")
}

func TestExportTranscript(t *testing.T) {
	mockRepo := new(MockCaptionRepo)
	service := NewCaptionService(mockRepo, nil, slog.Default())
	userID := uuid.New()
	sessionID := uuid.New()

	t.Run("JoinsFinalSegments", func(t *testing.T) {
		ctx := context.Background()
		session := &types.CaptionSession{ID: sessionID, UserID: userID, Title: "Biology 101"}
		segments := []types.CaptionSegment{
			{SessionID: sessionID, Text: "Welcome to class.", Final: true},
			{SessionID: sessionID, Text: "Today we cover cells.", Final: true},
		}

		mockRepo.On("GetSession", ctx, userID, sessionID).Return(session, nil).Once()
		mockRepo.On("ListSegments", ctx, userID, sessionID, true).Return(segments, nil).Once()

		transcript, filename, err := service.ExportTranscript(ctx, userID, sessionID)

		assert.NoError(t, err)
		assert.Equal(t, "Welcome to class.\nToday we cover cells.\n", transcript)
		assert.Equal(t, "biology-101.txt", filename)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownSession", func(t *testing.T) {
		ctx := context.Background()

		mockRepo.On("GetSession", ctx, userID, sessionID).Return(nil, types.ErrNotFound).Once()

		_, _, err := service.ExportTranscript(ctx, userID, sessionID)

		assert.ErrorIs(t, err, types.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})
}

func TestBuildExportFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Biology 101", "biology-101.txt"},
		{"  Algebra / Unit 2!  ", "algebra--unit-2.txt"},
		{"___", "transcript.txt"},
		{"", "transcript.txt"},
		{"Ünïcode", "ncode.txt"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, buildExportFilename(tt.title), "title %q", tt.title)
	}
}

func TestSummarizeSession(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()
	session := &types.CaptionSession{ID: sessionID, UserID: userID, Title: "Biology 101"}
	segments := []types.CaptionSegment{{SessionID: sessionID, Text: "Cells divide by mitosis.", Final: true}}

	t.Run("NoSummarizerConfigured", func(t *testing.T) {
		mockRepo := new(MockCaptionRepo)
		service := NewCaptionService(mockRepo, nil, slog.Default())

		_, err := service.SummarizeSession(context.Background(), userID, sessionID)

		assert.ErrorIs(t, err, types.ErrUnavailable)
	})

	t.Run("Success", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockCaptionRepo)
		mockSummarizer := new(MockSummarizer)
		service := NewCaptionService(mockRepo, mockSummarizer, slog.Default())

		mockRepo.On("GetSession", ctx, userID, sessionID).Return(session, nil).Once()
		mockRepo.On("ListSegments", ctx, userID, sessionID, true).Return(segments, nil).Once()
		mockSummarizer.On("Summarize", ctx, "Cells divide by mitosis.\n").
			Return("- Mitosis basics", "gemini-2.0-flash", nil).Once()

		summary, err := service.SummarizeSession(ctx, userID, sessionID)

		assert.NoError(t, err)
		assert.Equal(t, sessionID, summary.SessionID)
		assert.Equal(t, "- Mitosis basics", summary.Summary)
		assert.Equal(t, "gemini-2.0-flash", summary.Model)
		mockRepo.AssertExpectations(t)
		mockSummarizer.AssertExpectations(t)
	})

	t.Run("EmptyTranscript", func(t *testing.T) {
		ctx := context.Background()
		mockRepo := new(MockCaptionRepo)
		mockSummarizer := new(MockSummarizer)
		service := NewCaptionService(mockRepo, mockSummarizer, slog.Default())

		mockRepo.On("GetSession", ctx, userID, sessionID).Return(session, nil).Once()
		mockRepo.On("ListSegments", ctx, userID, sessionID, true).Return([]types.CaptionSegment{}, nil).Once()

		_, err := service.SummarizeSession(ctx, userID, sessionID)

		assert.ErrorIs(t, err, types.ErrBadRequest)
		mockSummarizer.AssertNotCalled(t, "Summarize")
	})
}
