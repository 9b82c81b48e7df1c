// Package sqlite provides a durable PlanStore backed by a SQLite database
// file. Plans are stored as opaque JSON snapshots keyed by plan id, which is
// all the orchestration core requires of a persistence medium; a freshly
// constructed store over the same file observes every previously saved plan,
// enabling resume after a process restart.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/agentplan/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS plans (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	snapshot   BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// Store is a PlanStore over a SQLite database file. Safe for concurrent use;
// the database serializes writers.
type Store struct {
	db *sql.DB
}

// New opens (and if needed initializes) the database at path. Use ":memory:"
// for an ephemeral store.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open plan database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize plan schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save upserts a JSON snapshot of the plan. Durability holds once Save
// returns: a subsequent Load, from this or a fresh store over the same file,
// yields an equivalent plan.
func (s *Store) Save(plan *core.ExecutionPlan) error {
	snapshot := plan.Clone()
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal plan %s: %w", plan.ID, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO plans (id, status, snapshot, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status,
			snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		snapshot.ID, string(snapshot.Status), data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save plan %s: %w", plan.ID, err)
	}
	return nil
}

// Load returns the stored plan or core.ErrPlanNotFound.
func (s *Store) Load(planID string) (*core.ExecutionPlan, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT snapshot FROM plans WHERE id = ?`, planID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", planID, err)
	}
	return unmarshalPlan(data)
}

// List returns all stored plans ordered by last update.
func (s *Store) List() ([]*core.ExecutionPlan, error) {
	rows, err := s.db.Query(`SELECT snapshot FROM plans ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []*core.ExecutionPlan
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan plan row: %w", err)
		}
		plan, err := unmarshalPlan(data)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// Delete removes the plan or returns core.ErrPlanNotFound.
func (s *Store) Delete(planID string) error {
	res, err := s.db.Exec(`DELETE FROM plans WHERE id = ?`, planID)
	if err != nil {
		return fmt.Errorf("delete plan %s: %w", planID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrPlanNotFound
	}
	return nil
}

func unmarshalPlan(data []byte) (*core.ExecutionPlan, error) {
	var plan core.ExecutionPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan snapshot: %w", err)
	}
	return &plan, nil
}
