package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/signbridge/signbridge-api/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo defines the contract for auth data persistence.
type AuthRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error)
	GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error)
	// Register inserts the user row; the signup trigger creates the matching
	// user_profiles row. Returns the new user ID.
	Register(ctx context.Context, username, email, hashedPassword, role string) (string, error)
	UpdatePassword(ctx context.Context, userID, newHashedPassword string) error
	StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	ValidateRefreshTokenAndGetUserID(ctx context.Context, refreshToken string) (string, error)
	InvalidateRefreshToken(ctx context.Context, refreshToken string) error
	InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error
	GetOrCreateProviderUser(ctx context.Context, provider, username, email string) (*types.UserAuth, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresAuthRepo(pgxpool *pgxpool.Pool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgxpool,
	}
}

const userByFieldQuery = `
    SELECT u.id, u.username, u.email, u.password_hash,
           COALESCE(p.role, 'student'), u.created_at, u.updated_at
    FROM users u
    LEFT JOIN user_profiles p ON p.id = u.id`

// GetUserByEmail fetches a user plus the profile role for credential checks.
func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	var user types.UserAuth
	err := r.pgpool.QueryRow(ctx, userByFieldQuery+" WHERE u.email = $1", email).Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with email not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID),
	))
	defer span.End()

	var user types.UserAuth
	err := r.pgpool.QueryRow(ctx, userByFieldQuery+" WHERE u.id = $1", userID).Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB query failed")
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return &user, nil
}

// Register creates the user inside a transaction. The signup trigger creates
// the profile row with role 'student'; a teacher signup promotes it in the
// same transaction.
func (r *PostgresAuthRepo) Register(ctx context.Context, username, email, hashedPassword, role string) (string, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "Register", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Register"), slog.String("email", email))

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID string
	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
		username, email, hashedPassword).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			l.WarnContext(ctx, "Registration conflict", slog.String("constraint", pgErr.ConstraintName))
			return "", fmt.Errorf("username or email already taken: %w", types.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return "", fmt.Errorf("failed to insert user: %w", err)
	}

	if role == types.RoleTeacher {
		if _, err = tx.Exec(ctx,
			`UPDATE user_profiles SET role = $1 WHERE id = $2`, role, userID); err != nil {
			span.RecordError(err)
			return "", fmt.Errorf("failed to set profile role: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit registration: %w", err)
	}

	l.InfoContext(ctx, "User registered", slog.String("userID", userID))
	return userID, nil
}

func (r *PostgresAuthRepo) UpdatePassword(ctx context.Context, userID, newHashedPassword string) error {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "UpdatePassword", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`,
		newHashedPassword, userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("update password: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update password: %w", types.ErrNotFound)
	}
	return nil
}

func (r *PostgresAuthRepo) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.pgpool.Exec(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at)
         VALUES ($1, $2, $3)`,
		userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("store refresh token: db insert failed: %w", err)
	}
	return nil
}

// ValidateRefreshTokenAndGetUserID checks expiry and revocation and returns
// the owning user ID.
func (r *PostgresAuthRepo) ValidateRefreshTokenAndGetUserID(ctx context.Context, refreshToken string) (string, error) {
	var userID string
	var expiresAt time.Time
	var revokedAt *time.Time

	err := r.pgpool.QueryRow(ctx,
		`SELECT user_id, expires_at, revoked_at
         FROM refresh_tokens
         WHERE token = $1`, refreshToken).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("invalid refresh token: %w", types.ErrUnauthenticated)
		}
		return "", fmt.Errorf("validate refresh token: query failed: %w", err)
	}

	if time.Now().After(expiresAt) || revokedAt != nil {
		return "", fmt.Errorf("refresh token expired or revoked: %w", types.ErrUnauthenticated)
	}
	return userID, nil
}

func (r *PostgresAuthRepo) InvalidateRefreshToken(ctx context.Context, refreshToken string) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = $1
         WHERE token = $2 AND revoked_at IS NULL`,
		time.Now(), refreshToken)
	if err != nil {
		return fmt.Errorf("invalidate refresh token: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already revoked or never existed; not an error for logout.
		r.logger.Debug("No active refresh token found to revoke")
	}
	return nil
}

func (r *PostgresAuthRepo) InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.pgpool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = $1
		 WHERE user_id = $2 AND revoked_at IS NULL`,
		time.Now(), userID)
	if err != nil {
		return fmt.Errorf("invalidate all tokens: db update failed: %w", err)
	}
	return nil
}

// GetOrCreateProviderUser resolves a social sign-in to a local user, creating
// one on first login. Provider accounts carry an unusable password hash.
func (r *PostgresAuthRepo) GetOrCreateProviderUser(ctx context.Context, provider, username, email string) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetOrCreateProviderUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.String("auth.provider", provider),
	))
	defer span.End()

	user, err := r.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	if username == "" {
		username = email
	}
	placeholder := "oauth:" + uuid.NewString()
	var userID string
	err = r.pgpool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, provider)
         VALUES ($1, $2, $3, $4) RETURNING id`,
		username, email, placeholder, provider).Scan(&userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB insert failed")
		return nil, fmt.Errorf("failed to create provider user: %w", err)
	}

	return r.GetUserByID(ctx, userID)
}
