package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	statement "municipal-statements/internal/statement/domain"
)

const (
	defaultDocumentsTable = "documents"

	// insufficient_privilege
	permissionDeniedCode = "42501"
)

// DocumentStore reads statement source documents from a JSONB table of the
// form (collection text, key text, data jsonb).
type DocumentStore struct {
	db    *sql.DB
	table string
}

// DocumentStoreOption configures a DocumentStore.
type DocumentStoreOption func(*DocumentStore)

// WithTable overrides the documents table name.
func WithTable(table string) DocumentStoreOption {
	return func(s *DocumentStore) {
		if table != "" {
			s.table = table
		}
	}
}

// NewDocumentStore constructs a document store.
func NewDocumentStore(db *sql.DB, opts ...DocumentStoreOption) (*DocumentStore, error) {
	if db == nil {
		return nil, errors.New("document store: nil db")
	}
	store := &DocumentStore{db: db, table: defaultDocumentsTable}
	for _, opt := range opts {
		opt(store)
	}
	if !validIdentifier(store.table) {
		return nil, fmt.Errorf("document store: invalid table name %q", store.table)
	}
	return store, nil
}

// Get returns the document stored under collection and key.
func (s *DocumentStore) Get(ctx context.Context, collection, key string) (statement.Record, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("document store: nil db")
	}
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM `+s.table+` WHERE collection = $1 AND key = $2`,
		collection, key,
	).Scan(&data)
	if err != nil {
		return nil, classify(collection, key, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s/%s: %w", collection, key, statement.ErrDocumentNotFound)
	}
	return statement.DecodeRecord(data)
}

// Put inserts or replaces the document stored under collection and key.
func (s *DocumentStore) Put(ctx context.Context, collection, key string, doc statement.Record) error {
	if s == nil || s.db == nil {
		return errors.New("document store: nil db")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document store: encode %s/%s: %w", collection, key, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO `+s.table+` (collection, key, data)
VALUES ($1, $2, $3)
ON CONFLICT (collection, key) DO UPDATE SET data = EXCLUDED.data`, collection, key, data)
	if err != nil {
		return classify(collection, key, err)
	}
	return nil
}

// EnsureSchema creates the documents table when it does not exist.
func (s *DocumentStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("document store: nil db")
	}
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+s.table+` (
	collection TEXT NOT NULL,
	key TEXT NOT NULL,
	data JSONB NOT NULL,
	PRIMARY KEY (collection, key)
)`)
	if err != nil {
		return fmt.Errorf("document store: ensure schema: %w", err)
	}
	return nil
}

func classify(collection, key string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s/%s: %w", collection, key, statement.ErrDocumentNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == permissionDeniedCode {
		return fmt.Errorf("%s/%s: %w: %s", collection, key, statement.ErrPermissionDenied, pgErr.Message)
	}
	return fmt.Errorf("document store: %s/%s: %w", collection, key, err)
}

func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r == '.' && i > 0:
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
