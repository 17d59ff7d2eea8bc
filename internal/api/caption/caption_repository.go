package caption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/signbridge/signbridge-api/internal/types"
)

// PGXPool is the subset of pgxpool.Pool the repository needs. Satisfied by
// pgxmock in tests.
type PGXPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ CaptionRepo = (*PostgresCaptionRepo)(nil)

// CaptionRepo defines the contract for caption session persistence. Every
// query is scoped by user_id so callers can only touch their own rows.
type CaptionRepo interface {
	CreateSession(ctx context.Context, userID uuid.UUID, params types.CreateCaptionSessionParams) (*types.CaptionSession, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.CaptionSession, error)
	ListSessions(ctx context.Context, userID uuid.UUID) ([]types.CaptionSession, error)
	EndSession(ctx context.Context, userID, sessionID uuid.UUID) error
	SaveDraft(ctx context.Context, userID, sessionID uuid.UUID, text string) error
	AppendSegment(ctx context.Context, userID, sessionID uuid.UUID, params types.AppendSegmentParams) (*types.CaptionSegment, error)
	ListSegments(ctx context.Context, userID, sessionID uuid.UUID, finalOnly bool) ([]types.CaptionSegment, error)
}

type PostgresCaptionRepo struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewPostgresCaptionRepo(pgpool PGXPool, logger *slog.Logger) *PostgresCaptionRepo {
	return &PostgresCaptionRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresCaptionRepo) CreateSession(ctx context.Context, userID uuid.UUID, params types.CreateCaptionSessionParams) (*types.CaptionSession, error) {
	ctx, span := otel.Tracer("CaptionRepo").Start(ctx, "CreateSession", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "caption_sessions"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	language := params.Language
	if language == "" {
		language = "en-US"
	}

	query := `
        INSERT INTO caption_sessions (user_id, title, language)
        VALUES ($1, $2, $3)
        RETURNING id, user_id, title, language, draft, started_at, ended_at, created_at, updated_at`

	var s types.CaptionSession
	err := r.pgpool.QueryRow(ctx, query, userID, params.Title, language).Scan(
		&s.ID, &s.UserID, &s.Title, &s.Language, &s.Draft, &s.StartedAt, &s.EndedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return nil, fmt.Errorf("database error creating caption session: %w", err)
	}

	r.logger.InfoContext(ctx, "Caption session created", slog.String("sessionID", s.ID.String()))
	return &s, nil
}

func (r *PostgresCaptionRepo) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.CaptionSession, error) {
	ctx, span := otel.Tracer("CaptionRepo").Start(ctx, "GetSession", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "caption_sessions"),
		attribute.String("db.session.id", sessionID.String()),
	))
	defer span.End()

	query := `
        SELECT id, user_id, title, language, draft, started_at, ended_at, created_at, updated_at
        FROM caption_sessions
        WHERE id = $1 AND user_id = $2`

	var s types.CaptionSession
	err := r.pgpool.QueryRow(ctx, query, sessionID, userID).Scan(
		&s.ID, &s.UserID, &s.Title, &s.Language, &s.Draft, &s.StartedAt, &s.EndedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("caption session not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching caption session: %w", err)
	}

	return &s, nil
}

func (r *PostgresCaptionRepo) ListSessions(ctx context.Context, userID uuid.UUID) ([]types.CaptionSession, error) {
	ctx, span := otel.Tracer("CaptionRepo").Start(ctx, "ListSessions", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "caption_sessions"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	query := `
        SELECT id, user_id, title, language, draft, started_at, ended_at, created_at, updated_at
        FROM caption_sessions
        WHERE user_id = $1
        ORDER BY started_at DESC`

	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error listing caption sessions: %w", err)
	}
	defer rows.Close()

	var sessions []types.CaptionSession
	for rows.Next() {
		var s types.CaptionSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Language, &s.Draft, &s.StartedAt, &s.EndedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning caption session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading caption sessions: %w", err)
	}

	return sessions, nil
}

func (r *PostgresCaptionRepo) EndSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	ctx, span := otel.Tracer("CaptionRepo").Start(ctx, "EndSession", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "caption_sessions"),
		attribute.String("db.session.id", sessionID.String()),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		`UPDATE caption_sessions SET ended_at = $1
         WHERE id = $2 AND user_id = $3 AND ended_at IS NULL`,
		time.Now(), sessionID, userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error ending caption session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("caption session not found or already ended: %w", types.ErrNotFound)
	}
	return nil
}

// SaveDraft overwrites the autosaved working text. Last write wins; the
// browser debounces, the server just stores.
func (r *PostgresCaptionRepo) SaveDraft(ctx context.Context, userID, sessionID uuid.UUID, text string) error {
	ctx, span := otel.Tracer("CaptionRepo").Start(ctx, "SaveDraft", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "caption_sessions"),
		attribute.String("db.session.id", sessionID.String()),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		`UPDATE caption_sessions SET draft = $1
         WHERE id = $2 AND user_id = $3`,
		text, sessionID, userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("database error saving draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("caption session not found: %w", types.ErrNotFound)
	}
	return nil
}

func (r *PostgresCaptionRepo) AppendSegment(ctx context.Context, userID, sessionID uuid.UUID, params types.AppendSegmentParams) (*types.CaptionSegment, error) {
	ctx, span := otel.Tracer("CaptionRepo").Start(ctx, "AppendSegment", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "caption_segments"),
		attribute.String("db.session.id", sessionID.String()),
	))
	defer span.End()

	spokenAt := time.Now()
	if params.SpokenAt != nil {
		spokenAt = *params.SpokenAt
	}

	// The ownership check rides along in the INSERT ... SELECT.
	query := `
        INSERT INTO caption_segments (session_id, text, final, spoken_at)
        SELECT cs.id, $3, $4, $5
        FROM caption_sessions cs
        WHERE cs.id = $1 AND cs.user_id = $2
        RETURNING id, session_id, text, final, spoken_at, created_at`

	var seg types.CaptionSegment
	err := r.pgpool.QueryRow(ctx, query, sessionID, userID, params.Text, params.Final, spokenAt).Scan(
		&seg.ID, &seg.SessionID, &seg.Text, &seg.Final, &seg.SpokenAt, &seg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("caption session not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return nil, fmt.Errorf("database error appending segment: %w", err)
	}

	return &seg, nil
}

func (r *PostgresCaptionRepo) ListSegments(ctx context.Context, userID, sessionID uuid.UUID, finalOnly bool) ([]types.CaptionSegment, error) {
	ctx, span := otel.Tracer("CaptionRepo").Start(ctx, "ListSegments", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "caption_segments"),
		attribute.String("db.session.id", sessionID.String()),
	))
	defer span.End()

	query := `
        SELECT seg.id, seg.session_id, seg.text, seg.final, seg.spoken_at, seg.created_at
        FROM caption_segments seg
        JOIN caption_sessions cs ON cs.id = seg.session_id
        WHERE seg.session_id = $1 AND cs.user_id = $2 AND (NOT $3 OR seg.final)
        ORDER BY seg.spoken_at, seg.created_at`

	rows, err := r.pgpool.Query(ctx, query, sessionID, userID, finalOnly)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error listing segments: %w", err)
	}
	defer rows.Close()

	var segments []types.CaptionSegment
	for rows.Next() {
		var seg types.CaptionSegment
		if err := rows.Scan(&seg.ID, &seg.SessionID, &seg.Text, &seg.Final, &seg.SpokenAt, &seg.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning segment: %w", err)
		}
		segments = append(segments, seg)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading segments: %w", err)
	}

	return segments, nil
}
