package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Connect opens the blob database and verifies the connection.
func Connect(dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("blob database URL is empty")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// PostgresStore keeps payloads in a single blobs table and serves them
// under baseURL/files/.
type PostgresStore struct {
	db      *sql.DB
	baseURL string
}

// NewPostgresStore creates a PostgresStore. baseURL is the externally
// reachable address of this service, without a trailing slash.
func NewPostgresStore(db *sql.DB, baseURL string) *PostgresStore {
	return &PostgresStore{db: db, baseURL: baseURL}
}

func (s *PostgresStore) Put(ctx context.Context, path string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (path, data, created_at) VALUES ($1, $2, now())
		 ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data`,
		path, data)
	if err != nil {
		return "", fmt.Errorf("store blob %s: %w", path, err)
	}
	return s.baseURL + "/files/" + url.PathEscape(path), nil
}

func (s *PostgresStore) Get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE path = $1`, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", path, err)
	}
	return data, nil
}
