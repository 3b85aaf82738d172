package verify

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Cache stores fetched race results on disk, keyed by season and round.
// The results of a past race never change, so a hit here saves one of the
// API's ~200 hourly requests on every replay of the same event.
type Cache struct {
	db *sql.DB
}

func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening results cache")
	}
	if _, err := db.Exec(buildCreateResultsTable()); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating results table")
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func buildCreateResultsTable() string {
	return `CREATE TABLE IF NOT EXISTS race_results (
		season INTEGER NOT NULL,
		round INTEGER NOT NULL,
		code TEXT NOT NULL,
		position INTEGER NOT NULL,
		driverid TEXT NOT NULL,
		status TEXT NOT NULL,
		PRIMARY KEY (season, round, code));`
}

// Get returns the cached results for a race, or ok=false on a miss.
func (c *Cache) Get(season, round int) ([]Result, bool, error) {
	rows, err := c.db.Query(
		`SELECT code, position, driverid, status FROM race_results WHERE season = ? AND round = ? ORDER BY position`,
		season, round,
	)
	if err != nil {
		return nil, false, errors.Wrap(err, "querying results cache")
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Code, &r.Position, &r.DriverID, &r.Status); err != nil {
			return nil, false, errors.Wrap(err, "scanning cached result")
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, errors.Wrap(err, "reading results cache")
	}
	return results, len(results) > 0, nil
}

// Put stores a race's results, replacing any previous entry.
func (c *Cache) Put(season, round int, results []Result) error {
	tx, err := c.db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting cache write")
	}
	for _, r := range results {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO race_results (season, round, code, position, driverid, status) VALUES (?, ?, ?, ?, ?, ?)`,
			season, round, r.Code, r.Position, r.DriverID, r.Status,
		)
		if err != nil {
			tx.Rollback()
			return errors.Wrap(err, "writing cached result")
		}
	}
	return errors.Wrap(tx.Commit(), "committing cache write")
}
