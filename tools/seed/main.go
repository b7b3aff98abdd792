package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"municipal-statements/internal/audit"
	statement "municipal-statements/internal/statement/domain"
	"municipal-statements/internal/statement/infrastructure/memory"
	"municipal-statements/internal/statement/infrastructure/postgres"
)

type config struct {
	dsn     string
	fixture string
	table   string
	schema  bool
	timeout time.Duration
}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}
	if cfg.fixture == "" {
		log.Fatal("fixture is required")
	}

	fixture, err := memory.LoadFixtureFile(cfg.fixture)
	if err != nil {
		log.Fatalf("load fixture: %v", err)
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	store, err := postgres.NewDocumentStore(db, postgres.WithTable(cfg.table))
	if err != nil {
		log.Fatalf("document store: %v", err)
	}
	if cfg.schema {
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalf("documents schema: %v", err)
		}
		if err := audit.NewRepository(db).EnsureSchema(ctx); err != nil {
			log.Fatalf("audit schema: %v", err)
		}
	}

	counts := map[string]int{}
	err = fixture.Each(func(collection, key string, doc statement.Record) error {
		if err := store.Put(ctx, collection, key, doc); err != nil {
			return err
		}
		counts[collection]++
		return nil
	})
	if err != nil {
		log.Fatalf("seed documents: %v", err)
	}
	for collection, n := range counts {
		log.Printf("seeded %s: %d documents", collection, n)
	}
	log.Printf("seed complete: %d documents into %s", fixture.Len(), cfg.table)
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.dsn, "dsn", getenvDefault("PG_DSN", os.Getenv("DATABASE_URL")), "postgres DSN")
	flag.StringVar(&cfg.fixture, "fixture", os.Getenv("FIXTURE_FILE"), "JSON fixture of the form {collection: {key: document}}")
	flag.StringVar(&cfg.table, "table", getenvDefault("DOCUMENTS_TABLE", "documents"), "documents table name")
	flag.BoolVar(&cfg.schema, "schema", false, "create the documents and audit_logs tables if missing")
	flag.DurationVar(&cfg.timeout, "timeout", 2*time.Minute, "overall seed timeout")
	flag.Parse()
	return cfg
}

func getenvDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
