package postgres

// Package postgres persists application profiles and starting credits.

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
	apperrors "github.com/target/studio-ui-auth/internal/errors"
)

// DefaultStartingCredits is granted to every newly provisioned user.
const DefaultStartingCredits = 100

// ProfileStore implements ports.ProfileStore on PostgreSQL.
type ProfileStore struct {
	DB *sql.DB
	// StartingCredits overrides DefaultStartingCredits when positive.
	StartingCredits int
}

// NewProfileStore creates a ProfileStore with default starting credits.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{DB: db, StartingCredits: DefaultStartingCredits}
}

// profileRow mirrors the profiles table for pgx row collection.
type profileRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

const profileGetQuery = `
	SELECT id, name, role, created_at
	FROM profiles
	WHERE id = $1`

// Get returns the profile for the user, or a not-found error when no row
// exists yet.
func (s *ProfileStore) Get(ctx context.Context, userID string) (*domainauth.Profile, error) {
	var row profileRow
	err := withPgxConn(ctx, s.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, profileGetQuery, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[profileRow])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	return &domainauth.Profile{
		ID:        row.ID,
		Name:      row.Name,
		Role:      domainauth.Role(row.Role),
		CreatedAt: row.CreatedAt,
	}, nil
}

// EnsureExists inserts the profile row if absent. A pre-existing row wins:
// the insert is skipped and no error is returned, which makes the call safe
// under concurrent login and signup for the same user.
func (s *ProfileStore) EnsureExists(ctx context.Context, profile domainauth.Profile) error {
	role := profile.Role
	if role == "" {
		role = domainauth.RoleUser
	}

	err := withPgxConn(ctx, s.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO profiles (id, name, role, created_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (id) DO NOTHING`,
			profile.ID, profile.Name, string(role))
		return err
	})
	return apperrors.MapDBError(err)
}

// EnsureCredits provisions the starting credits row for a user. Idempotent
// like EnsureExists; an existing balance is never reset.
func (s *ProfileStore) EnsureCredits(ctx context.Context, userID string) error {
	credits := s.StartingCredits
	if credits <= 0 {
		credits = DefaultStartingCredits
	}

	err := withPgxConn(ctx, s.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO user_credits (user_id, balance, created_at)
			VALUES ($1, $2, now())
			ON CONFLICT (user_id) DO NOTHING`,
			userID, credits)
		return err
	})
	return apperrors.MapDBError(err)
}
