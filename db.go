package main

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS grooming_runs (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		run_at           DATETIME NOT NULL,
		ticket_count     INTEGER NOT NULL,
		engineer_count   INTEGER NOT NULL,
		requested_trials INTEGER NOT NULL,
		valid_trials     INTEGER NOT NULL,
		used_fallback    INTEGER NOT NULL DEFAULT 0,
		unresolved_keys  TEXT DEFAULT '',
		input_tokens     INTEGER DEFAULT 0,
		output_tokens    INTEGER DEFAULT 0,
		created_at       DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_grooming_runs_run_at ON grooming_runs(run_at);

	CREATE TABLE IF NOT EXISTS run_recommendations (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id       INTEGER NOT NULL,
		ticket_key   TEXT NOT NULL,
		category     TEXT DEFAULT '',
		summary      TEXT DEFAULT '',
		engineer     TEXT NOT NULL,
		votes        INTEGER NOT NULL,
		valid_trials INTEGER NOT NULL,
		rationale    TEXT DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_run_recs_run ON run_recommendations(run_id);
	CREATE INDEX IF NOT EXISTS idx_run_recs_ticket ON run_recommendations(ticket_key);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// SaveRun persists one completed run and its recommendations atomically
// and returns the new run id.
func SaveRun(db *sql.DB, report *GroomingReport) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO grooming_runs (run_at, ticket_count, engineer_count, requested_trials, valid_trials, used_fallback, unresolved_keys, input_tokens, output_tokens)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunAt, len(report.Recommendations), len(report.Profiles),
		report.RequestedTrials, report.ValidTrials, report.UsedFallback,
		strings.Join(report.Unresolved, ","),
		report.Usage.InputTokens, report.Usage.OutputTokens)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_recommendations (run_id, ticket_key, category, summary, engineer, votes, valid_trials, rationale)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, rec := range report.Recommendations {
		if _, err := stmt.Exec(runID, rec.TicketKey, rec.Category, rec.Summary, rec.Engineer, rec.Votes, rec.ValidTrials, rec.Rationale); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// RunSummary is one row of the stored run history.
type RunSummary struct {
	ID           int64
	RunAt        time.Time
	TicketCount  int
	ValidTrials  int
	UsedFallback bool
}

func ListRecentRuns(db *sql.DB, limit int) ([]RunSummary, error) {
	rows, err := db.Query(`
		SELECT id, run_at, ticket_count, valid_trials, used_fallback
		FROM grooming_runs ORDER BY run_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.RunAt, &r.TicketCount, &r.ValidTrials, &r.UsedFallback); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RecommendationsForRun loads the stored recommendations of one run.
func RecommendationsForRun(db *sql.DB, runID int64) ([]AssignmentRecommendation, error) {
	rows, err := db.Query(`
		SELECT ticket_key, category, summary, engineer, votes, valid_trials, rationale
		FROM run_recommendations WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []AssignmentRecommendation
	for rows.Next() {
		var rec AssignmentRecommendation
		if err := rows.Scan(&rec.TicketKey, &rec.Category, &rec.Summary, &rec.Engineer, &rec.Votes, &rec.ValidTrials, &rec.Rationale); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// LastRecommendationFor returns the most recent stored winner for a ticket
// key, or "" if the ticket has never been recommended.
func LastRecommendationFor(db *sql.DB, ticketKey string) (string, error) {
	var engineer string
	err := db.QueryRow(`
		SELECT r.engineer FROM run_recommendations r
		JOIN grooming_runs g ON g.id = r.run_id
		WHERE r.ticket_key = ? ORDER BY g.run_at DESC LIMIT 1`, ticketKey).Scan(&engineer)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return engineer, nil
}
