package results

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at      TEXT    NOT NULL,
	version         TEXT    NOT NULL,
	threads         INTEGER NOT NULL,
	size            TEXT    NOT NULL,
	isotopes        INTEGER NOT NULL,
	gridpoints      INTEGER NOT NULL,
	grid_type       TEXT    NOT NULL,
	hash_bins       INTEGER NOT NULL,
	method          TEXT    NOT NULL,
	particles       INTEGER NOT NULL,
	lookups         INTEGER NOT NULL,
	kernel          INTEGER NOT NULL,
	precision       TEXT    NOT NULL,
	seed            TEXT    NOT NULL,
	memory_mb       INTEGER NOT NULL,
	verification    TEXT    NOT NULL,
	evaluations     INTEGER NOT NULL,
	runtime_seconds REAL    NOT NULL,
	lookups_per_sec REAL    NOT NULL
)`

// Store keeps a history of reports in an SQLite database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the run history at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening results db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs table: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends r and returns its row id.
func (s *Store) Record(r Report) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO runs (
		started_at, version, threads, size, isotopes, gridpoints, grid_type, hash_bins,
		method, particles, lookups, kernel, precision, seed, memory_mb,
		verification, evaluations, runtime_seconds, lookups_per_sec
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.StartedAt.UTC().Format(time.RFC3339Nano), r.Version, r.Threads, r.Size,
		r.Isotopes, r.Gridpoints, r.GridType, r.HashBins, r.Method, r.Particles,
		r.Lookups, r.Kernel, r.Precision, fmt.Sprint(r.Seed), int64(r.MemoryMB),
		fmt.Sprint(r.Verification), int64(r.Evaluations), r.RuntimeSec, r.LookupsPerSec)
	if err != nil {
		return 0, fmt.Errorf("recording run: %w", err)
	}
	return res.LastInsertId()
}

// Runs returns every recorded report, oldest first.
func (s *Store) Runs() ([]Report, error) {
	rows, err := s.db.Query(`SELECT
		started_at, version, threads, size, isotopes, gridpoints, grid_type, hash_bins,
		method, particles, lookups, kernel, precision, seed, memory_mb,
		verification, evaluations, runtime_seconds, lookups_per_sec
	FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var (
			r                 Report
			started, seed, vh string
			mem, evals        int64
		)
		if err := rows.Scan(&started, &r.Version, &r.Threads, &r.Size, &r.Isotopes,
			&r.Gridpoints, &r.GridType, &r.HashBins, &r.Method, &r.Particles,
			&r.Lookups, &r.Kernel, &r.Precision, &seed, &mem, &vh, &evals,
			&r.RuntimeSec, &r.LookupsPerSec); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if _, err := fmt.Sscan(seed, &r.Seed); err != nil {
			return nil, fmt.Errorf("parsing seed: %w", err)
		}
		if _, err := fmt.Sscan(vh, &r.Verification); err != nil {
			return nil, fmt.Errorf("parsing verification: %w", err)
		}
		r.MemoryMB = uint64(mem)
		r.Evaluations = uint64(evals)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
