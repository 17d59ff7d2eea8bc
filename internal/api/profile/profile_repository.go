package profile

import (
	"context"
	"errors"
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

var _ ProfileRepo = (*PostgresProfileRepo)(nil)

// ProfileRepo defines the contract for user_profiles persistence.
type ProfileRepo interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.UserProfile, error)
	ListStudents(ctx context.Context) ([]types.UserProfile, error)
}

type PostgresProfileRepo struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewPostgresProfileRepo(pgpool PGXPool, logger *slog.Logger) *PostgresProfileRepo {
	return &PostgresProfileRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresProfileRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "GetProfile", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "user_profiles"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetProfile"), slog.String("userID", userID.String()))

	query := `
        SELECT id, email, role, display_name, created_at, updated_at
        FROM user_profiles
        WHERE id = $1`

	var p types.UserProfile
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.Email, &p.Role, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile not found: %w", types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to query user profile", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching profile: %w", err)
	}

	return &p, nil
}

func (r *PostgresProfileRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileParams) (*types.UserProfile, error) {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "UpdateProfile", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "user_profiles"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateProfile"), slog.String("userID", userID.String()))

	query := `
        UPDATE user_profiles
        SET display_name = COALESCE($2, display_name),
            role         = COALESCE($3, role)
        WHERE id = $1
        RETURNING id, email, role, display_name, created_at, updated_at`

	var p types.UserProfile
	err := r.pgpool.QueryRow(ctx, query, userID, params.DisplayName, params.Role).Scan(
		&p.ID, &p.Email, &p.Role, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile not found: %w", types.ErrNotFound)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			// role check constraint
			return nil, fmt.Errorf("invalid role value: %w", types.ErrBadRequest)
		}
		l.ErrorContext(ctx, "Failed to update user profile", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB update failed")
		return nil, fmt.Errorf("database error updating profile: %w", err)
	}

	l.InfoContext(ctx, "User profile updated")
	return &p, nil
}

// ListStudents returns every profile with the student role, for teacher
// roster views.
func (r *PostgresProfileRepo) ListStudents(ctx context.Context) ([]types.UserProfile, error) {
	ctx, span := otel.Tracer("ProfileRepo").Start(ctx, "ListStudents", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "user_profiles"),
	))
	defer span.End()

	query := `
        SELECT id, email, role, display_name, created_at, updated_at
        FROM user_profiles
        WHERE role = 'student'
        ORDER BY display_name, email`

	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error listing students: %w", err)
	}
	defer rows.Close()

	var profiles []types.UserProfile
	for rows.Next() {
		var p types.UserProfile
		if err := rows.Scan(&p.ID, &p.Email, &p.Role, &p.DisplayName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("database error scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("database error reading profiles: %w", err)
	}

	return profiles, nil
}
