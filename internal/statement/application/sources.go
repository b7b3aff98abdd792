package application

import (
	"context"
	"errors"
	"strings"

	statement "municipal-statements/internal/statement/domain"
)

// DocumentStore reads a single document by collection and key. Missing
// documents return statement.ErrDocumentNotFound and rejected reads
// statement.ErrPermissionDenied.
type DocumentStore interface {
	Get(ctx context.Context, collection, key string) (statement.Record, error)
}

// Collections names the document collection of each source.
type Collections struct {
	AccountMaster string `yaml:"account_master"`
	AgedAnalysis  string `yaml:"aged_analysis"`
	MeterReadings string `yaml:"meter_readings"`
	LevyLines     string `yaml:"levy_lines"`
}

// DefaultCollections returns the collection names used when none are configured.
func DefaultCollections() Collections {
	return Collections{
		AccountMaster: "account_master",
		AgedAnalysis:  "aged_analysis",
		MeterReadings: "meter_readings",
		LevyLines:     "levy_lines",
	}
}

func (c Collections) withDefaults() Collections {
	def := DefaultCollections()
	if strings.TrimSpace(c.AccountMaster) == "" {
		c.AccountMaster = def.AccountMaster
	}
	if strings.TrimSpace(c.AgedAnalysis) == "" {
		c.AgedAnalysis = def.AgedAnalysis
	}
	if strings.TrimSpace(c.MeterReadings) == "" {
		c.MeterReadings = def.MeterReadings
	}
	if strings.TrimSpace(c.LevyLines) == "" {
		c.LevyLines = def.LevyLines
	}
	return c
}

// SourceReaders reads the four statement sources for an account and period.
type SourceReaders struct {
	store       DocumentStore
	collections Collections
}

// NewSourceReaders constructs the readers over store.
func NewSourceReaders(store DocumentStore, collections Collections) (*SourceReaders, error) {
	if store == nil {
		return nil, errors.New("source readers: nil document store")
	}
	return &SourceReaders{store: store, collections: collections.withDefaults()}, nil
}

// Collections returns the effective collection names.
func (r *SourceReaders) Collections() Collections {
	return r.collections
}

// PeriodKey is the document key of the period-scoped sources.
func PeriodKey(accountNumber string, period statement.Period) string {
	return accountNumber + "_" + period.Key()
}

// AccountMaster reads the customer master record. The record is not period
// scoped and is keyed by account number alone.
func (r *SourceReaders) AccountMaster(ctx context.Context, accountNumber string, _ statement.Period) (statement.Record, error) {
	return r.get(ctx, r.collections.AccountMaster, accountNumber)
}

// AgedAnalysis reads the aging bucket document for the period.
func (r *SourceReaders) AgedAnalysis(ctx context.Context, accountNumber string, period statement.Period) (statement.Record, error) {
	return r.get(ctx, r.collections.AgedAnalysis, PeriodKey(accountNumber, period))
}

// MeterReadings reads the meter readings document for the period.
func (r *SourceReaders) MeterReadings(ctx context.Context, accountNumber string, period statement.Period) (statement.Record, error) {
	return r.get(ctx, r.collections.MeterReadings, PeriodKey(accountNumber, period))
}

// LevyLines reads the levied line items document for the period.
func (r *SourceReaders) LevyLines(ctx context.Context, accountNumber string, period statement.Period) (statement.Record, error) {
	return r.get(ctx, r.collections.LevyLines, PeriodKey(accountNumber, period))
}

func (r *SourceReaders) get(ctx context.Context, collection, key string) (statement.Record, error) {
	if strings.TrimSpace(key) == "" {
		return nil, statement.ErrEmptyAccountNumber
	}
	doc, err := r.store.Get(ctx, collection, key)
	if err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, statement.ErrDocumentNotFound
	}
	return doc, nil
}
