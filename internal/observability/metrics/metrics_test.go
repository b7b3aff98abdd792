package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersBeforeInitAreNoops(t *testing.T) {
	if statementGenerateTotal != nil {
		t.Skip("metrics already initialised in this process")
	}
	ObserveStatementGenerate(ResultSuccess, time.Millisecond)
	IncSourceDegraded("meter_readings")
	IncAssetFallback("absa")
	IncAssetCache(CacheHit)
	IncHTTPRequest("/healthz", 200)
}

func TestCountersAfterInit(t *testing.T) {
	Init(nil, "", nil)

	before := testutil.ToFloat64(sourceDegradedTotal.WithLabelValues("aged_analysis"))
	IncSourceDegraded("aged_analysis")
	if got := testutil.ToFloat64(sourceDegradedTotal.WithLabelValues("aged_analysis")); got != before+1 {
		t.Fatalf("expected degraded counter %v, got %v", before+1, got)
	}

	before = testutil.ToFloat64(assetFallbackTotal.WithLabelValues("unknown"))
	IncAssetFallback("")
	if got := testutil.ToFloat64(assetFallbackTotal.WithLabelValues("unknown")); got != before+1 {
		t.Fatalf("expected fallback counter %v, got %v", before+1, got)
	}

	before = testutil.ToFloat64(statementExportTotal.WithLabelValues("pdf", ResultError))
	ObserveStatementExport("pdf", ResultError, 10*time.Millisecond)
	if got := testutil.ToFloat64(statementExportTotal.WithLabelValues("pdf", ResultError)); got != before+1 {
		t.Fatalf("expected export counter %v, got %v", before+1, got)
	}

	before = testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/metrics", "4xx"))
	IncHTTPRequest("/metrics", 404)
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/metrics", "4xx")); got != before+1 {
		t.Fatalf("expected http counter %v, got %v", before+1, got)
	}
}

func TestQueryCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	if got := queryCount(db, nil, "SELECT COUNT(*) FROM documents"); got != 7 {
		t.Fatalf("expected 7, got %v", got)
	}
	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("relation does not exist"))
	if got := queryCount(db, nil, "SELECT COUNT(*) FROM documents"); got != 0 {
		t.Fatalf("expected 0 on error, got %v", got)
	}
	if got := queryCount(nil, nil, "SELECT 1"); got != 0 {
		t.Fatalf("expected 0 for nil db, got %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 302: "3xx", 404: "4xx", 503: "5xx"}
	for status, want := range cases {
		if got := statusClass(status); got != want {
			t.Fatalf("status %d: expected %s, got %s", status, want, got)
		}
	}
}
