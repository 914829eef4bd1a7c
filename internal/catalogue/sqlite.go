package catalogue

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite is a Loader backed by a SQLite database, mirroring the
// teacher's storage.SQLiteStorage: a pure-Go driver, a handful of
// prepared-statement-free queries (catalogues are loaded once at
// session-server startup, not on a hot path), and the same
// busy-timeout DSN convention.
type SQLite struct {
	Path      string
	TimeoutMs int
}

// NewSQLite returns a Loader reading the catalogue from the SQLite
// database at path.
func NewSQLite(path string, timeoutMs int) *SQLite {
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}
	return &SQLite{Path: path, TimeoutMs: timeoutMs}
}

// Load opens the database, reads the rules/goal_actions/visa_type_order
// tables, and closes it again — catalogues are a load-once snapshot,
// not a connection the session façade holds open.
func (s *SQLite) Load() (*CatalogueDocument, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=%d", s.Path, s.TimeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalogue: opening %s: %w", s.Path, err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("catalogue: pinging %s: %w", s.Path, err)
	}

	rules, err := s.loadRules(db)
	if err != nil {
		return nil, err
	}
	goalActions, err := s.loadGoalActions(db)
	if err != nil {
		return nil, err
	}
	visaOrder, err := s.loadVisaTypeOrder(db)
	if err != nil {
		return nil, err
	}

	return &CatalogueDocument{
		Rules:         rules,
		GoalActions:   goalActions,
		VisaTypeOrder: visaOrder,
	}, nil
}

func (s *SQLite) loadRules(db *sql.DB) ([]RuleRecord, error) {
	rows, err := db.Query(`
		SELECT id, name, conditions_json, action, is_or_rule, visa_type, is_goal_action
		FROM rules ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("catalogue: querying rules: %w", err)
	}
	defer rows.Close()

	var out []RuleRecord
	for rows.Next() {
		var rec RuleRecord
		var conditionsJSON string
		if err := rows.Scan(&rec.ID, &rec.Name, &conditionsJSON, &rec.Action, &rec.IsOrRule, &rec.VisaType, &rec.IsGoalAction); err != nil {
			return nil, fmt.Errorf("catalogue: scanning rule row: %w", err)
		}
		if err := json.Unmarshal([]byte(conditionsJSON), &rec.Conditions); err != nil {
			return nil, fmt.Errorf("catalogue: rule %s: conditions_json: %w", rec.ID, err)
		}
		if err := rec.validate(); err != nil {
			return nil, fmt.Errorf("catalogue: rule %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) loadGoalActions(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT action FROM goal_actions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("catalogue: querying goal_actions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var action string
		if err := rows.Scan(&action); err != nil {
			return nil, fmt.Errorf("catalogue: scanning goal_actions row: %w", err)
		}
		out = append(out, action)
	}
	return out, rows.Err()
}

func (s *SQLite) loadVisaTypeOrder(db *sql.DB) (map[string]int, error) {
	rows, err := db.Query(`SELECT code, ord FROM visa_type_order`)
	if err != nil {
		return nil, fmt.Errorf("catalogue: querying visa_type_order: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var code string
		var ord int
		if err := rows.Scan(&code, &ord); err != nil {
			return nil, fmt.Errorf("catalogue: scanning visa_type_order row: %w", err)
		}
		out[code] = ord
	}
	return out, rows.Err()
}

// InitializeSchema creates the rules/goal_actions/visa_type_order
// tables if they do not already exist, in the shape Load reads.
func InitializeSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rules (
			id TEXT PRIMARY KEY,
			name TEXT,
			conditions_json TEXT NOT NULL,
			action TEXT NOT NULL,
			is_or_rule INTEGER NOT NULL DEFAULT 0,
			visa_type TEXT,
			is_goal_action INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS goal_actions (
			action TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS visa_type_order (
			code TEXT PRIMARY KEY,
			ord INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("catalogue: initializing schema: %w", err)
		}
	}
	return nil
}
