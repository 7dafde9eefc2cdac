package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"enrich/internal/config"
	"enrich/internal/enrich"
)

// Store persists the run ledger in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the ledger database in the state directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the ledger database location.
func (s *Store) Path() string { return s.path }

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// BeginRun records a new run plus one pending item per input file and
// returns the run with its generated identifier.
func (s *Store) BeginRun(ctx context.Context, cfg *config.Config, fields []string, inputs []string) (*Run, error) {
	if len(inputs) == 0 {
		return nil, errors.New("run requires at least one input file")
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal content fields: %w", err)
	}

	run := &Run{
		ID:            uuid.NewString(),
		Status:        StatusRunning,
		ChunkSize:     cfg.Pipeline.ChunkSize,
		Workers:       cfg.Pipeline.Workers,
		ContentFields: append([]string(nil), fields...),
		StartedAt:     time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin run transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO runs (id, status, chunk_size, workers, content_fields, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Status,
		run.ChunkSize,
		run.Workers,
		string(fieldsJSON),
		run.StartedAt.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	for _, input := range inputs {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO run_items (run_id, input_path, output_path, status)
             VALUES (?, ?, ?, ?)`,
			run.ID,
			input,
			enrich.OutputPath(cfg.Paths.OutputDir, input),
			StatusPending,
		); err != nil {
			return nil, fmt.Errorf("insert run item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}
	return run, nil
}

// ItemStarted marks an input file as in flight.
func (s *Store) ItemStarted(ctx context.Context, runID, inputPath string) error {
	err := s.execWithRetry(
		ctx,
		`UPDATE run_items SET status = ?, started_at = ? WHERE run_id = ? AND input_path = ?`,
		StatusRunning,
		time.Now().UTC().Format(time.RFC3339Nano),
		runID,
		inputPath,
	)
	if err != nil {
		return fmt.Errorf("mark item started: %w", err)
	}
	return nil
}

// ItemCompleted records a successful item with its record counts.
func (s *Store) ItemCompleted(ctx context.Context, runID, inputPath string, stats enrich.Stats) error {
	err := s.execWithRetry(
		ctx,
		`UPDATE run_items
         SET status = ?, records = ?, chunks = ?, skipped = ?, finished_at = ?
         WHERE run_id = ? AND input_path = ?`,
		StatusCompleted,
		stats.Records,
		stats.Chunks,
		stats.Skipped,
		time.Now().UTC().Format(time.RFC3339Nano),
		runID,
		inputPath,
	)
	if err != nil {
		return fmt.Errorf("mark item completed: %w", err)
	}
	return nil
}

// ItemFailed records a failed item and the failure message.
func (s *Store) ItemFailed(ctx context.Context, runID, inputPath string, itemErr error) error {
	message := ""
	if itemErr != nil {
		message = itemErr.Error()
	}
	err := s.execWithRetry(
		ctx,
		`UPDATE run_items
         SET status = ?, error_message = ?, finished_at = ?
         WHERE run_id = ? AND input_path = ?`,
		StatusFailed,
		nullableString(message),
		time.Now().UTC().Format(time.RFC3339Nano),
		runID,
		inputPath,
	)
	if err != nil {
		return fmt.Errorf("mark item failed: %w", err)
	}
	return nil
}

// FinishRun closes out a run with a terminal status.
func (s *Store) FinishRun(ctx context.Context, runID string, status Status, runErr error) error {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	err := s.execWithRetry(
		ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		status,
		nullableString(message),
		time.Now().UTC().Format(time.RFC3339Nano),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

const runColumns = "id, status, chunk_size, workers, content_fields, error_message, started_at, finished_at"

// GetRun fetches a run by identifier. A missing run returns (nil, nil).
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// LatestRun returns the most recently started run, or nil when the ledger is
// empty.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// Items returns a run's items in insertion order.
func (s *Store) Items(ctx context.Context, runID string) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, input_path, output_path, status, records, chunks, skipped,
                error_message, started_at, finished_at
         FROM run_items WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Summarize counts a run's items by status.
func (s *Store) Summarize(ctx context.Context, runID string) (Summary, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(1) FROM run_items WHERE run_id = ? GROUP BY status`,
		runID,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("summarize run: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, err
		}
		summary.Total += count
		switch status {
		case StatusPending:
			summary.Pending += count
		case StatusRunning:
			summary.Running += count
		case StatusCompleted:
			summary.Completed += count
		case StatusFailed:
			summary.Failed += count
		}
	}
	return summary, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id          string
		statusStr   string
		chunkSize   int
		workers     int
		fieldsJSON  string
		errMessage  sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &statusStr, &chunkSize, &workers, &fieldsJSON, &errMessage, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		Status:       Status(statusStr),
		ChunkSize:    chunkSize,
		Workers:      workers,
		ErrorMessage: errMessage.String,
	}
	if fieldsJSON != "" {
		if err := json.Unmarshal([]byte(fieldsJSON), &run.ContentFields); err != nil {
			return nil, fmt.Errorf("decode content fields: %w", err)
		}
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id          int64
		runID       string
		inputPath   string
		outputPath  string
		statusStr   string
		records     int
		chunks      int
		skipped     int
		errMessage  sql.NullString
		startedRaw  sql.NullString
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &runID, &inputPath, &outputPath, &statusStr, &records, &chunks, &skipped, &errMessage, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}

	item := &Item{
		ID:           id,
		RunID:        runID,
		InputPath:    inputPath,
		OutputPath:   outputPath,
		Status:       Status(statusStr),
		Records:      records,
		Chunks:       chunks,
		Skipped:      skipped,
		ErrorMessage: errMessage.String,
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			item.StartedAt = &started
		}
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			item.FinishedAt = &finished
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
