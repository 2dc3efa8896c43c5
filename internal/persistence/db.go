// Package persistence provides SQLite-based storage for the city simulation.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/city-events/internal/agents"
	"github.com/talgya/city-events/internal/engine"
	"github.com/talgya/city-events/internal/events"
)

// DB wraps a SQLite connection for simulation state.
type DB struct {
	conn *sqlx.DB
}

// Snapshot is a stored copy of the event engine's XML state.
type Snapshot struct {
	ID        string `db:"id"`
	SavedTick uint64 `db:"saved_tick"`
	Version   int    `db:"version"`
	Payload   []byte `db:"payload"`
	CreatedAt int64  `db:"created_at"` // Unix seconds, wall clock
}

// Snapshots kept per database; older ones are pruned on save.
const keepSnapshots = 5

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS event_snapshots (
		id TEXT PRIMARY KEY,
		saved_tick INTEGER NOT NULL,
		version INTEGER NOT NULL,
		payload BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS citizens (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		attended INTEGER NOT NULL,
		profile_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_journal_tick ON journal(tick);
	CREATE INDEX IF NOT EXISTS idx_snapshots_tick ON event_snapshots(saved_tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveEventSnapshot stores payload as the newest snapshot and prunes old ones.
func (db *DB) SaveEventSnapshot(tick uint64, payload []byte) (string, error) {
	id := uuid.NewString()

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO event_snapshots (id, saved_tick, version, payload, created_at) VALUES (?, ?, ?, ?, ?)",
		id, tick, events.StorageVersion, payload, time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	_, err = tx.Exec(`DELETE FROM event_snapshots WHERE id NOT IN
		(SELECT id FROM event_snapshots ORDER BY saved_tick DESC, created_at DESC LIMIT ?)`, keepSnapshots)
	if err != nil {
		return "", fmt.Errorf("prune snapshots: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}

	slog.Debug("event snapshot saved", "id", id, "tick", tick, "size", humanize.Bytes(uint64(len(payload))))
	return id, nil
}

// LatestEventSnapshot returns the most recent snapshot, or nil when there is none.
func (db *DB) LatestEventSnapshot() (*Snapshot, error) {
	var s Snapshot
	err := db.conn.Get(&s,
		"SELECT id, saved_tick, version, payload, created_at FROM event_snapshots ORDER BY saved_tick DESC, created_at DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveCitizens writes all citizens to the database (full replace).
func (db *DB) SaveCitizens(list []*agents.Citizen) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM citizens"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO citizens (id, name, age, attended, profile_json) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range list {
		profileJSON, err := json.Marshal(c.Profile)
		if err != nil {
			return fmt.Errorf("encode citizen %d: %w", c.ID, err)
		}
		if _, err := stmt.Exec(c.ID, c.Name, c.Age, c.Attended, string(profileJSON)); err != nil {
			return fmt.Errorf("insert citizen %d: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// LoadCitizens reads every stored citizen.
func (db *DB) LoadCitizens() ([]*agents.Citizen, error) {
	var rows []struct {
		ID          uint32 `db:"id"`
		Name        string `db:"name"`
		Age         uint16 `db:"age"`
		Attended    int    `db:"attended"`
		ProfileJSON string `db:"profile_json"`
	}
	if err := db.conn.Select(&rows, "SELECT id, name, age, attended, profile_json FROM citizens ORDER BY id"); err != nil {
		return nil, err
	}

	out := make([]*agents.Citizen, 0, len(rows))
	for _, r := range rows {
		c := &agents.Citizen{ID: agents.CitizenID(r.ID), Name: r.Name, Age: r.Age, Attended: r.Attended}
		if err := json.Unmarshal([]byte(r.ProfileJSON), &c.Profile); err != nil {
			return nil, fmt.Errorf("decode citizen %d: %w", r.ID, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// SaveJournal appends journal entries to the database.
func (db *DB) SaveJournal(entries []engine.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		_, err := tx.Exec(
			"INSERT INTO journal (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentJournal returns the most recent N journal entries, newest first.
func (db *DB) RecentJournal(limit int) ([]engine.JournalEntry, error) {
	var entries []engine.JournalEntry
	err := db.conn.Select(&entries,
		"SELECT tick, description, category FROM journal ORDER BY id DESC LIMIT ?",
		limit,
	)
	return entries, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// HasWorldState reports whether a previous run saved its state.
func (db *DB) HasWorldState() bool {
	_, err := db.GetMeta("last_tick")
	return err == nil
}

// LastTick returns the saved tick counter, or 0.
func (db *DB) LastTick() uint64 {
	v, err := db.GetMeta("last_tick")
	if err != nil {
		return 0
	}
	tick, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return tick
}

// SaveWorldState performs a full save of the simulation.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	payload, err := sim.Events.Serialize()
	if err != nil {
		return fmt.Errorf("serialize events: %w", err)
	}
	journal := sim.TakePending()

	slog.Info("saving world state",
		"citizens", len(sim.Citizens),
		"journal", len(journal),
		"snapshot", humanize.Bytes(uint64(len(payload))),
	)

	if _, err := db.SaveEventSnapshot(sim.CurrentTick(), payload); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveCitizens(sim.Citizens); err != nil {
		return fmt.Errorf("save citizens: %w", err)
	}
	if err := db.SaveJournal(journal); err != nil {
		return fmt.Errorf("save journal: %w", err)
	}
	if err := db.SaveMeta("last_tick", strconv.FormatUint(sim.CurrentTick(), 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved", "tick", sim.CurrentTick())
	return nil
}

// RestoreEvents loads the newest snapshot into mgr. It returns false when no
// snapshot exists.
func (db *DB) RestoreEvents(mgr *events.Manager) (bool, error) {
	snap, err := db.LatestEventSnapshot()
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return false, nil
	}
	if err := mgr.Deserialize(snap.Payload); err != nil {
		return false, fmt.Errorf("restore snapshot %s: %w", snap.ID, err)
	}
	slog.Info("event snapshot restored", "id", snap.ID, "tick", snap.SavedTick, "size", humanize.Bytes(uint64(len(snap.Payload))))
	return true, nil
}
