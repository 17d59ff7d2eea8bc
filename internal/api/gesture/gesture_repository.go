package gesture

import (
	"context"
	"fmt"
	"log/slog"

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

var _ GestureRepo = (*PostgresGestureRepo)(nil)

// GestureRepo persists translation history rows.
type GestureRepo interface {
	SaveTranslation(ctx context.Context, userID uuid.UUID, codes []string, phrase string) (*types.GestureTranslation, error)
	ListTranslations(ctx context.Context, userID uuid.UUID, limit int) ([]types.GestureTranslation, error)
}

type PostgresGestureRepo struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewPostgresGestureRepo(pgpool PGXPool, logger *slog.Logger) *PostgresGestureRepo {
	return &PostgresGestureRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresGestureRepo) SaveTranslation(ctx context.Context, userID uuid.UUID, letterCodes []string, phrase string) (*types.GestureTranslation, error) {
	ctx, span := otel.Tracer("GestureRepo").Start(ctx, "SaveTranslation", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "gesture_translations"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	query := `
        INSERT INTO gesture_translations (user_id, codes, phrase)
        VALUES ($1, $2, $3)
        RETURNING id, user_id, codes, phrase, created_at`

	var t types.GestureTranslation
	err := r.pgpool.QueryRow(ctx, query, userID, letterCodes, phrase).Scan(
		&t.ID, &t.UserID, &t.Codes, &t.Phrase, &t.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return nil, fmt.Errorf("database error saving translation: %w", err)
	}

	return &t, nil
}

func (r *PostgresGestureRepo) ListTranslations(ctx context.Context, userID uuid.UUID, limit int) ([]types.GestureTranslation, error) {
	ctx, span := otel.Tracer("GestureRepo").Start(ctx, "ListTranslations", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "gesture_translations"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	query := `
        SELECT id, user_id, codes, phrase, created_at
        FROM gesture_translations
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2`

	rows, err := r.pgpool.Query(ctx, query, userID, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error listing translations: %w", err)
	}
	defer rows.Close()

	var translations []types.GestureTranslation
	for rows.Next() {
		var t types.GestureTranslation
		if err := rows.Scan(&t.ID, &t.UserID, &t.Codes, &t.Phrase, &t.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning translation: %w", err)
		}
		translations = append(translations, t)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading translations: %w", err)
	}

	return translations, nil
}
