// Package session provides SQLite-backed persistence of generation runs for
// the single-step mode. The generation core holds no session state; this
// store lives on the caller side and carries the accumulated context between
// step invocations.
package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/lorekeep/scenarist/internal/scenario"
)

// ErrNotFound is returned when a session id does not exist.
var ErrNotFound = errors.New("session not found")

// Session is one resumable generation run: its fixed inputs, the provider it
// targets, and the context accumulated so far.
type Session struct {
	ID        string
	Provider  string
	Inputs    scenario.Inputs
	Context   scenario.Context
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store wraps a SQLite connection for session persistence.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates a session database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	st := &Store{conn: conn}
	if err := st.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate session db: %w", err)
	}
	return st, nil
}

// Close closes the database connection.
func (st *Store) Close() error {
	return st.conn.Close()
}

func (st *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		provider TEXT NOT NULL,
		inputs_json TEXT NOT NULL,
		context_json TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`
	_, err := st.conn.Exec(schema)
	return err
}

type sessionRow struct {
	ID          string    `db:"id"`
	Provider    string    `db:"provider"`
	InputsJSON  string    `db:"inputs_json"`
	ContextJSON string    `db:"context_json"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Create persists a new session for the given inputs and provider id and
// returns it with a fresh identifier and an empty context.
func (st *Store) Create(in scenario.Inputs, providerID string) (*Session, error) {
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		Provider:  providerID,
		Inputs:    in,
		Context:   make(scenario.Context),
		CreatedAt: now,
		UpdatedAt: now,
	}

	inputsJSON, err := json.Marshal(s.Inputs)
	if err != nil {
		return nil, fmt.Errorf("encode inputs: %w", err)
	}
	contextJSON, err := json.Marshal(s.Context)
	if err != nil {
		return nil, fmt.Errorf("encode context: %w", err)
	}

	_, err = st.conn.Exec(
		`INSERT INTO sessions (id, provider, inputs_json, context_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.Provider, string(inputsJSON), string(contextJSON), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// Get loads a session by id.
func (st *Store) Get(id string) (*Session, error) {
	var row sessionRow
	err := st.conn.Get(&row, `SELECT * FROM sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	s := &Session{
		ID:        row.ID,
		Provider:  row.Provider,
		Context:   make(scenario.Context),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.InputsJSON), &s.Inputs); err != nil {
		return nil, fmt.Errorf("decode inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(row.ContextJSON), &s.Context); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	return s, nil
}

// SaveContext persists a session's accumulated context.
func (st *Store) SaveContext(id string, gctx scenario.Context) error {
	contextJSON, err := json.Marshal(gctx)
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}

	res, err := st.conn.Exec(
		`UPDATE sessions SET context_json = ?, updated_at = ? WHERE id = ?`,
		string(contextJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List returns all sessions, most recently updated first, without their
// full contexts loaded.
func (st *Store) List() ([]Session, error) {
	var rows []sessionRow
	err := st.conn.Select(&rows,
		`SELECT id, provider, inputs_json, '' AS context_json, created_at, updated_at
		 FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]Session, 0, len(rows))
	for _, row := range rows {
		s := Session{
			ID:        row.ID,
			Provider:  row.Provider,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
		if err := json.Unmarshal([]byte(row.InputsJSON), &s.Inputs); err != nil {
			return nil, fmt.Errorf("decode inputs: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}
