package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/EngSenku/ensat/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) *Repository {
	return &Repository{
		db:      db,
		metrics: m,
	}
}

// GetUserByGoogleID looks up a user by provider subject id.
// Returns nil without error when no such user exists.
func (r *Repository) GetUserByGoogleID(ctx context.Context, googleID string) (*User, error) {
	start := time.Now()
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Where("google_id = ?", googleID).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by internal id.
// Returns nil without error when no such user exists.
func (r *Repository) GetUserByID(ctx context.Context, id int) (*User, error) {
	start := time.Now()
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user and fills in the generated id.
func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(user).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "users", time.Since(start), err)

	return err
}

// UpdateUserClaims refreshes name and email from the latest provider claims.
func (r *Repository) UpdateUserClaims(ctx context.Context, user *User) error {
	start := time.Now()
	user.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(user).
		Column("name", "email", "updated_at").
		WherePK().
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "users", time.Since(start), err)

	return err
}

// CreateSession stores a newly issued session token.
func (r *Repository) CreateSession(ctx context.Context, session *Session) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(session).Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "sessions", time.Since(start), err)

	return err
}

// GetSession retrieves a live session by token.
// Returns nil without error for unknown, revoked or expired tokens.
func (r *Repository) GetSession(ctx context.Context, token string) (*Session, error) {
	start := time.Now()
	session := new(Session)
	err := r.db.NewSelect().
		Model(session).
		Where("token = ?", token).
		Where("expires_at > ?", time.Now()).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "sessions", time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession revokes a session token (for logout).
// Deleting an unknown or already-revoked token is a no-op.
func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*Session)(nil)).
		Where("token = ?", token).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "sessions", time.Since(start), err)

	return err
}

// DeleteExpiredSessions removes all expired sessions (cleanup)
func (r *Repository) DeleteExpiredSessions(ctx context.Context) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*Session)(nil)).
		Where("expires_at < ?", time.Now()).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "sessions", time.Since(start), err)

	return err
}

// DeleteAllUserSessions removes every session of a user.
func (r *Repository) DeleteAllUserSessions(ctx context.Context, userID int) error {
	start := time.Now()
	_, err := r.db.NewDelete().
		Model((*Session)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "sessions", time.Since(start), err)

	return err
}
