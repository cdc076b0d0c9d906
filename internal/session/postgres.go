// internal/session/postgres.go
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/lib/pq" // Register the PostgreSQL driver with database/sql.
)

// PostgresStore keeps sessions in the console_sessions table.
type PostgresStore struct {
	DB  *sql.DB       // Shared database connection pool
	TTL time.Duration // How long a session lives after its last save
}

// OpenDB opens a PostgreSQL connection pool using dsn, then pings the database
// with a 5-second timeout to confirm it is reachable.
func OpenDB(dsn string) (*sql.DB, error) {
	// sql.Open only validates the DSN format; it does not actually connect yet.
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the sessions table if it does not exist yet.
func (m PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS console_sessions (
			session_id text PRIMARY KEY,
			data       jsonb NOT NULL,
			expires_at timestamptz NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	_, err := m.DB.ExecContext(ctx, query)
	return err
}

// Load retrieves a live session by id.
// Returns ErrNotFound if it does not exist or has expired.
func (m PostgresStore) Load(ctx context.Context, id string) (*Session, error) {
	query := `
		SELECT data
		FROM console_sessions
		WHERE session_id = $1 AND expires_at > CURRENT_TIMESTAMP`

	var data []byte
	err := m.DB.QueryRowContext(ctx, query, id).Scan(&data)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}
	return decode(id, data)
}

// Save inserts a new session, or replaces the data of a stored one that is
// still live and pushes its expiry out by TTL.
func (m PostgresStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	expires := time.Now().Add(m.TTL)

	if s.Stored() {
		query := `
			UPDATE console_sessions
			SET data = $2, expires_at = $3, updated_at = CURRENT_TIMESTAMP
			WHERE session_id = $1 AND expires_at > CURRENT_TIMESTAMP`
		result, err := m.DB.ExecContext(ctx, query, s.ID, data, expires)
		if err != nil {
			return err
		}
		return requireRow(result)
	}

	query := `
		INSERT INTO console_sessions (session_id, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE
		SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at, updated_at = CURRENT_TIMESTAMP`

	_, err = m.DB.ExecContext(ctx, query, s.ID, data, expires)
	return err
}

// Touch pushes the expiry of a live session out by TTL.
func (m PostgresStore) Touch(ctx context.Context, id string) error {
	query := `
		UPDATE console_sessions
		SET expires_at = $2
		WHERE session_id = $1 AND expires_at > CURRENT_TIMESTAMP`
	result, err := m.DB.ExecContext(ctx, query, id, time.Now().Add(m.TTL))
	if err != nil {
		return err
	}
	return requireRow(result)
}

// requireRow maps an update that matched no row to ErrNotFound.
func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the session with the given id.
func (m PostgresStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM console_sessions WHERE session_id = $1`
	_, err := m.DB.ExecContext(ctx, query, id)
	return err
}

// DeleteExpired removes every expired session and returns how many rows went.
func (m PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := m.DB.ExecContext(ctx, `DELETE FROM console_sessions WHERE expires_at <= CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
