package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vlmbench/internal/checkpoint"
)

// ChannelArtifact is one consolidated channel of a run directory.
type ChannelArtifact struct {
	Channel  string
	Artifact checkpoint.Artifact
}

// Batch is one export of the artifacts of a task run directory.
type Batch struct {
	// RunID is empty for exports made outside a run.
	RunID    string
	Task     string
	Subtask  string
	Model    string
	Channels []ChannelArtifact
}

// Result reports what an export wrote.
type Result struct {
	BatchID  string
	Entries  int
	Failures int
}

// Export upserts every artifact entry of the batch, keyed by task, subtask,
// model, channel and item id, and records the batch.
func Export(ctx context.Context, db *sql.DB, batch Batch) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("duckdb: context is nil")
	}
	if db == nil {
		return Result{}, errors.New("duckdb: db is nil")
	}
	if batch.Task == "" || batch.Subtask == "" || batch.Model == "" {
		return Result{}, errors.New("duckdb: batch needs task, subtask and model")
	}
	result := Result{BatchID: uuid.NewString()}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("begin export: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, ch := range batch.Channels {
		for _, entry := range ch.Artifact.Entries {
			key, err := FingerprintJSON(entry.Payload)
			if err != nil {
				return Result{}, fmt.Errorf("fingerprint %s/%s: %w", ch.Channel, entry.ID, err)
			}
			failed := checkpoint.IsFailure(entry.Payload)
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO artifact_entries (task, subtask, model, channel, item_id, payload, payload_key, failed, batch_id)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT (task, subtask, model, channel, item_id) DO UPDATE SET
				   payload = excluded.payload,
				   payload_key = excluded.payload_key,
				   failed = excluded.failed,
				   batch_id = excluded.batch_id`,
				batch.Task,
				batch.Subtask,
				batch.Model,
				ch.Channel,
				entry.ID,
				string(entry.Payload),
				key,
				failed,
				result.BatchID,
			); err != nil {
				return Result{}, fmt.Errorf("upsert %s/%s: %w", ch.Channel, entry.ID, err)
			}
			result.Entries++
			if failed {
				result.Failures++
			}
		}
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO export_batches (batch_id, run_id, task, subtask, model, entries, failures, exported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.BatchID,
		nullableString(batch.RunID),
		batch.Task,
		batch.Subtask,
		batch.Model,
		result.Entries,
		result.Failures,
		time.Now().UTC(),
	); err != nil {
		return Result{}, fmt.Errorf("record batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit export: %w", err)
	}
	return result, nil
}

// ChannelTotals is one row of the per-channel totals view.
type ChannelTotals struct {
	Channel  string
	Entries  int
	Failures int
}

// Totals reads the per-channel entry and failure counts of a run directory.
func Totals(ctx context.Context, db *sql.DB, task, subtask, model string) ([]ChannelTotals, error) {
	rows, err := db.QueryContext(
		ctx,
		`SELECT channel, entries, failures FROM v_channel_totals
		 WHERE task = ? AND subtask = ? AND model = ?
		 ORDER BY channel`,
		task, subtask, model,
	)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()
	var out []ChannelTotals
	for rows.Next() {
		var row ChannelTotals
		if err := rows.Scan(&row.Channel, &row.Entries, &row.Failures); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
