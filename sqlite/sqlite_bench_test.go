package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/sitepush"
	"github.com/fwojciec/sitepush/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkJournalMode compares record upserts between WAL and rollback
// journal modes. This simulates a run: one upsert per submitted URL.
func BenchmarkJournalMode(b *testing.B) {
	b.Run("rollback_journal", func(b *testing.B) {
		benchmarkRecordUpserts(b, "DELETE")
	})

	b.Run("wal_mode", func(b *testing.B) {
		benchmarkRecordUpserts(b, "WAL")
	})
}

func benchmarkRecordUpserts(b *testing.B, journalMode string) {
	b.Helper()

	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	_, err := db.ExecContext(ctx, "PRAGMA journal_mode = "+journalMode)
	require.NoError(b, err)

	records := sqlite.NewRecordService(db)
	now := time.Now()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		rec := &sitepush.URLRecord{
			URL:           fmt.Sprintf("https://example.com/page%d", i%1000),
			Source:        "https://example.com/sitemap.xml",
			Success:       i%7 != 0,
			LastAttemptAt: now,
		}
		if err := records.UpsertRecord(ctx, rec); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFindSuccessfulRecords measures the lookup a worklist build does
// against a sitemap with many recorded URLs.
func BenchmarkFindSuccessfulRecords(b *testing.B) {
	const recordsPerSource = 5000

	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	records := sqlite.NewRecordService(db)
	source := "https://example.com/sitemap.xml"
	now := time.Now()

	for i := 0; i < recordsPerSource; i++ {
		require.NoError(b, records.UpsertRecord(ctx, &sitepush.URLRecord{
			URL:           fmt.Sprintf("https://example.com/page%d", i),
			Source:        source,
			Success:       i%2 == 0,
			LastAttemptAt: now.Add(-time.Duration(i) * time.Minute),
		}))
	}

	success := true
	since := now.Add(-sitepush.QuotaWindow)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		found, err := records.FindRecords(ctx, sitepush.RecordFilter{
			Source:         &source,
			Success:        &success,
			AttemptedAfter: &since,
		})
		if err != nil {
			b.Fatal(err)
		}
		if len(found) == 0 {
			b.Fatal("expected records")
		}
	}
}
