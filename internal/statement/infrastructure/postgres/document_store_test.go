package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	statement "municipal-statements/internal/statement/domain"
)

func newMockStore(t *testing.T, opts ...DocumentStoreOption) (*DocumentStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	store, err := NewDocumentStore(db, opts...)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, mock
}

func TestDocumentStoreGet(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT data FROM documents WHERE collection = \$1 AND key = \$2`).
		WithArgs("aged_analysis", "1002345_202410").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"current": 100.10, "120 days": "75"}`)))

	doc, err := store.Get(context.Background(), "aged_analysis", "1002345_202410")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := doc.Decimal("current").StringFixed(2); got != "100.10" {
		t.Fatalf("unexpected current bucket %s", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentStoreGetErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "missing row", err: sql.ErrNoRows, want: statement.ErrDocumentNotFound},
		{name: "insufficient privilege", err: &pgconn.PgError{Code: "42501", Message: "permission denied for table documents"}, want: statement.ErrPermissionDenied},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, mock := newMockStore(t, WithTable("statement_documents"))
			mock.ExpectQuery("SELECT data FROM statement_documents").WillReturnError(tc.err)
			_, err := store.Get(context.Background(), "account_master", "1002345")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT data FROM documents").WillReturnError(errors.New("connection reset"))
	_, err := store.Get(context.Background(), "account_master", "1002345")
	if err == nil || errors.Is(err, statement.ErrDocumentNotFound) || errors.Is(err, statement.ErrPermissionDenied) {
		t.Fatalf("expected a plain store error, got %v", err)
	}
}

func TestDocumentStorePut(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO documents").
		WithArgs("levy_lines", "1002345_202410", []byte(`{"lines":[]}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Put(context.Background(), "levy_lines", "1002345_202410", statement.Record{"lines": []any{}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDocumentStoreEnsureSchema(t *testing.T) {
	store, mock := newMockStore(t, WithTable("statement_documents"))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS statement_documents").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestNewDocumentStoreValidation(t *testing.T) {
	if _, err := NewDocumentStore(nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	for _, table := range []string{"documents; DROP TABLE x", "1docs", "docs-x"} {
		if _, err := NewDocumentStore(db, WithTable(table)); err == nil {
			t.Fatalf("expected error for table %q", table)
		}
	}
	if _, err := NewDocumentStore(db, WithTable("portal.documents_v2")); err != nil {
		t.Fatalf("schema qualified table: %v", err)
	}
}

func TestDocumentStoreIntegration(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	key TEXT NOT NULL,
	data JSONB NOT NULL,
	PRIMARY KEY (collection, key)
)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	store, err := NewDocumentStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	if err := store.Put(ctx, "account_master", "it-1002345", statement.Record{"accountHolderName": "Integration"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	defer db.Exec(`DELETE FROM documents WHERE collection = 'account_master' AND key = 'it-1002345'`)

	doc, err := store.Get(ctx, "account_master", "it-1002345")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.String("accountHolderName") != "Integration" {
		t.Fatalf("unexpected document %v", doc)
	}
	if _, err := store.Get(ctx, "account_master", "it-missing"); !errors.Is(err, statement.ErrDocumentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
