package duckdb_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"vlmbench/internal/duckdb/testing"
	"vlmbench/internal/testutil"
)

const (
	testTimeout = 2 * time.Second
)

// openTestDB opens an in-memory DuckDB instance with the schema applied.
func openTestDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx := testutil.Context(t, testTimeout)
	db := duckdbtesting.Open(t, ":memory:")
	duckdbtesting.ApplySchema(t, db)
	return db, ctx
}

// queryInt returns a single integer value from the database.
func queryInt(t *testing.T, ctx context.Context, db *sql.DB, query string, args ...interface{}) int {
	t.Helper()
	var out int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&out); err != nil {
		t.Fatalf("query int failed: %v", err)
	}
	return out
}

// runWithTimeout executes fn and fails the test if ctx expires first.
func runWithTimeout(t *testing.T, ctx context.Context, fn func() error) {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	select {
	case <-ctx.Done():
		t.Fatalf("test timed out: %v", ctx.Err())
	case err := <-done:
		if err != nil {
			t.Fatalf("test failed: %v", err)
		}
	}
}

func assertRowCount(ctx context.Context, db *sql.DB, table string, want int) error {
	var got int
	query := "SELECT COUNT(*) FROM " + table
	if err := db.QueryRowContext(ctx, query).Scan(&got); err != nil {
		return fmt.Errorf("count %s: %w", table, err)
	}
	if got != want {
		return fmt.Errorf("%s row count: got %d want %d", table, got, want)
	}
	return nil
}
