// Package duckdb stores the reference distributions in a single DuckDB
// bundle, so a deployment can ship one file instead of a directory of TSVs.
// Analysis opens the bundle with OpenReadOnly.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/covarr-net/smdp/internal/reference"
)

// Store manages a DuckDB connection holding reference distributions.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create bundle directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// OpenReadOnly opens an existing bundle without creating or altering it.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}

	db, err := sql.Open("duckdb", path+"?access_mode=read_only")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open bundle %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS distributions (
		name VARCHAR,
		position BIGINT,
		count BIGINT
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sources (
		name VARCHAR PRIMARY KEY,
		path VARCHAR,
		size BIGINT,
		mod_time TIMESTAMP
	)`)
	return err
}

// ImportTSV bulk-loads a (position, count) TSV with a header into the
// bundle using DuckDB's read_csv, replacing any rows for name.
func (s *Store) ImportTSV(name, tsvPath string) error {
	if _, err := s.db.Exec(`DELETE FROM distributions WHERE name=?`, name); err != nil {
		return fmt.Errorf("clear %s distribution: %w", name, err)
	}

	query := fmt.Sprintf(`INSERT INTO distributions
		SELECT CAST(? AS VARCHAR), position, count
		FROM read_csv('%s', delim='\t', header=true,
			columns={
				'position': 'BIGINT',
				'count': 'BIGINT'
			})`, strings.ReplaceAll(tsvPath, "'", "''"))

	if _, err := s.db.Exec(query, name); err != nil {
		return fmt.Errorf("loading %s distribution: %w", name, err)
	}
	return nil
}

// WriteDistribution replaces the rows for d.Name with d's position counts,
// using the Appender API.
func (s *Store) WriteDistribution(d *reference.Distribution) error {
	if _, err := s.db.Exec(`DELETE FROM distributions WHERE name=?`, d.Name); err != nil {
		return fmt.Errorf("clear %s distribution: %w", d.Name, err)
	}

	counts := make(map[int]int64)
	for _, p := range d.Positions {
		counts[p]++
	}
	positions := make([]int, 0, len(counts))
	for p := range counts {
		positions = append(positions, p)
	}
	sort.Ints(positions)

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "distributions")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, p := range positions {
		if err := appender.AppendRow(d.Name, int64(p), counts[p]); err != nil {
			return fmt.Errorf("append %s position %d: %w", d.Name, p, err)
		}
	}

	return appender.Flush()
}

// Distribution reads one distribution back as a position multiset.
func (s *Store) Distribution(name string) (*reference.Distribution, error) {
	rows, err := s.db.Query(`SELECT position, count FROM distributions
		WHERE name=? ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("query %s distribution: %w", name, err)
	}
	defer rows.Close()

	d := &reference.Distribution{Name: name}
	for rows.Next() {
		var pos, count int64
		if err := rows.Scan(&pos, &count); err != nil {
			return nil, fmt.Errorf("scan %s distribution: %w", name, err)
		}
		for i := int64(0); i < count; i++ {
			d.Positions = append(d.Positions, int(pos))
		}
		d.Total += int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s distribution: %w", name, err)
	}
	if d.Total == 0 {
		return nil, fmt.Errorf("%s distribution not in bundle", name)
	}
	return d, nil
}

// Names returns the distribution names present in the bundle.
func (s *Store) Names() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT name FROM distributions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query distribution names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan distribution name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LoadSet reads the four reference distributions and combines them with the
// static tables.
func (s *Store) LoadSet(static reference.Static) (*reference.Set, error) {
	var dists []*reference.Distribution
	for _, name := range reference.Names {
		d, err := s.Distribution(name)
		if err != nil {
			return nil, err
		}
		dists = append(dists, d)
	}
	return reference.NewSet(dists, static), nil
}
