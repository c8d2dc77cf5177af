// Package db stores the history of sweep runs and their per-radius
// estimates in SQLite.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/xcthulhu/roland-mc/internal/estimator"
	"github.com/xcthulhu/roland-mc/internal/sweep"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the database at path and applies all
// pending migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite pragmas are per connection; a single connection keeps them in force.
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// RunParams are the inputs that define a sweep run.
type RunParams struct {
	Radius   sweep.RangeSpec
	Samples  int
	Seed     uint64
	MaxDraws int
}

// Run is a stored sweep run.
type Run struct {
	ID         string
	Params     RunParams
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Summary    sweep.Summary
	Error      string
}

// CreateRun records the start of a new run and returns it with a fresh id.
func (db *DB) CreateRun(params RunParams, startedAt time.Time) (Run, error) {
	run := Run{
		ID:        uuid.New().String(),
		Params:    params,
		StartedAt: startedAt,
		Status:    StatusRunning,
	}
	_, err := db.Exec(`
		INSERT INTO runs (run_id, started_at, radius_min, radius_max, radius_step, samples, seed, max_draws, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, startedAt.UnixNano(),
		params.Radius.Min, params.Radius.Max, params.Radius.Step,
		params.Samples, strconv.FormatUint(params.Seed, 10), params.MaxDraws, run.Status,
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// RecordEstimate stores one per-radius result for runID.
func (db *DB) RecordEstimate(runID string, res estimator.Result) error {
	_, err := db.Exec(`
		INSERT INTO estimates (run_id, radius, ratio, hits, accepted, draws)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, res.Radius, res.Ratio, res.Hits, res.Accepted, res.Draws,
	)
	if err != nil {
		return fmt.Errorf("failed to record estimate for run %s radius %g: %w", runID, res.Radius, err)
	}
	return nil
}

// FinishRun stores the summary of a run. A non-nil runErr marks the run
// failed and keeps its message.
func (db *DB) FinishRun(runID string, s sweep.Summary, runErr error) error {
	status := StatusCompleted
	var errText sql.NullString
	if runErr != nil {
		status = StatusFailed
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}
	finished := s.Finished
	if finished.IsZero() {
		finished = time.Now()
	}

	res, err := db.Exec(`
		UPDATE runs SET
			finished_at = ?, status = ?, radii = ?,
			mean_ratio = ?, stddev_ratio = ?, peak_radius = ?, peak_ratio = ?,
			total_draws = ?, total_accepted = ?, error = ?
		WHERE run_id = ?`,
		finished.UnixNano(), status, s.Radii,
		s.MeanRatio, s.StdDevRatio, s.PeakRadius, s.PeakRatio,
		s.TotalDraws, s.TotalAccepted, errText,
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `run_id, started_at, finished_at, radius_min, radius_max, radius_step,
	samples, seed, max_draws, status, radii, mean_ratio, stddev_ratio,
	peak_radius, peak_ratio, total_draws, total_accepted, error`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run                          Run
		startedAt                    int64
		finishedAt                   sql.NullInt64
		seed                         string
		mean, stddev, peakR, peakVal sql.NullFloat64
		errText                      sql.NullString
	)
	err := row.Scan(
		&run.ID, &startedAt, &finishedAt,
		&run.Params.Radius.Min, &run.Params.Radius.Max, &run.Params.Radius.Step,
		&run.Params.Samples, &seed, &run.Params.MaxDraws, &run.Status,
		&run.Summary.Radii, &mean, &stddev, &peakR, &peakVal,
		&run.Summary.TotalDraws, &run.Summary.TotalAccepted, &errText,
	)
	if err != nil {
		return Run{}, err
	}

	run.Params.Seed, err = strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return Run{}, fmt.Errorf("invalid seed %q for run %s: %w", seed, run.ID, err)
	}
	run.StartedAt = time.Unix(0, startedAt)
	if finishedAt.Valid {
		run.FinishedAt = time.Unix(0, finishedAt.Int64)
	}
	run.Summary.MeanRatio = mean.Float64
	run.Summary.StdDevRatio = stddev.Float64
	run.Summary.PeakRadius = peakR.Float64
	run.Summary.PeakRatio = peakVal.Float64
	run.Summary.Started = run.StartedAt
	run.Summary.Finished = run.FinishedAt
	run.Error = errText.String
	return run, nil
}

// GetRun returns the run with the given id.
func (db *DB) GetRun(runID string) (Run, error) {
	row := db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, most recent first. A non-positive
// limit returns every run.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListEstimates returns the estimates recorded for runID ordered by radius.
func (db *DB) ListEstimates(runID string) ([]estimator.Result, error) {
	rows, err := db.Query(`
		SELECT radius, ratio, hits, accepted, draws
		FROM estimates WHERE run_id = ? ORDER BY radius`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list estimates for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []estimator.Result
	for rows.Next() {
		var r estimator.Result
		if err := rows.Scan(&r.Radius, &r.Ratio, &r.Hits, &r.Accepted, &r.Draws); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunSink records every result it receives against one run.
type RunSink struct {
	db    *DB
	runID string
}

// NewRunSink returns a results sink bound to runID. Closing the sink does
// not close the database.
func (db *DB) NewRunSink(runID string) *RunSink {
	return &RunSink{db: db, runID: runID}
}

func (s *RunSink) Write(res estimator.Result) error {
	return s.db.RecordEstimate(s.runID, res)
}

func (s *RunSink) Close() error { return nil }
