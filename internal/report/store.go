// Package report persists per-step training metrics: runs keyed by uuid,
// one row per step, vector fields serialized as JSON.
package report

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	description  TEXT NOT NULL,
	params_json  TEXT,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS step_reports (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	step         INTEGER NOT NULL,
	td_loss      REAL NOT NULL,
	reward_loss  REAL,
	report_json  TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region store-struct
// Store manages training-run reports in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region create-run
// CreateRun inserts a new run row and returns its record.
func (s *Store) CreateRun(description, paramsJSON string) (RunRecord, error) {
	rec := RunRecord{
		RunID:       uuid.New().String(),
		Description: description,
		ParamsJSON:  paramsJSON,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, description, params_json, created_at) VALUES (?, ?, ?, ?)`,
		rec.RunID, rec.Description, nullIfEmpty(rec.ParamsJSON), rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// #endregion create-run

// #region append-step
// AppendStep writes one step report under a run.
func (s *Store) AppendStep(runID string, rep StepReport) error {
	repJSON, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	var rewardLoss interface{}
	if rep.RewardLoss != nil {
		rewardLoss = *rep.RewardLoss
	}

	_, err = s.db.Exec(
		`INSERT INTO step_reports (run_id, step, td_loss, reward_loss, report_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, rep.Step, rep.TDLoss, rewardLoss, string(repJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert step: %w", err)
	}
	return nil
}

// #endregion append-step

// #region list-runs
// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, description, params_json, created_at FROM runs
		 ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var paramsJSON sql.NullString
		var createdStr string
		if err := rows.Scan(&rec.RunID, &rec.Description, &paramsJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if paramsJSON.Valid {
			rec.ParamsJSON = paramsJSON.String
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LatestRun returns the most recently created run.
func (s *Store) LatestRun() (RunRecord, error) {
	runs, err := s.ListRuns(1)
	if err != nil {
		return RunRecord{}, err
	}
	if len(runs) == 0 {
		return RunRecord{}, fmt.Errorf("no runs found")
	}
	return runs[0], nil
}

// #endregion list-runs

// #region list-steps
// ListSteps returns every step report of a run in step order.
func (s *Store) ListSteps(runID string) ([]StepReport, error) {
	rows, err := s.db.Query(
		`SELECT report_json FROM step_reports WHERE run_id = ? ORDER BY step ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var reports []StepReport
	for rows.Next() {
		var repJSON string
		if err := rows.Scan(&repJSON); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		var rep StepReport
		if err := json.Unmarshal([]byte(repJSON), &rep); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// #endregion list-steps

// #region run-reporter
// RunReporter is the Reporter that appends every step to one stored run.
type RunReporter struct {
	store *Store
	runID string
}

// NewRunReporter binds a reporter to an existing run.
func NewRunReporter(store *Store, runID string) *RunReporter {
	return &RunReporter{store: store, runID: runID}
}

// Report persists rep under the bound run.
func (r *RunReporter) Report(rep StepReport) error {
	return r.store.AppendStep(r.runID, rep)
}

// #endregion run-reporter

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
