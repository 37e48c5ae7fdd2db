package duckdb

import (
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Source records which TSV a bundled distribution was imported from.
type Source struct {
	Name string
	FileFingerprint
}

// RecordSource stores the fingerprint of the file a distribution came from.
func (s *Store) RecordSource(name string, fp FileFingerprint) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sources VALUES (?, ?, ?, ?)`,
		name, fp.Path, fp.Size, fp.ModTime.UTC())
	if err != nil {
		return fmt.Errorf("record %s source: %w", name, err)
	}
	return nil
}

// Sources lists the recorded source files, ordered by name.
func (s *Store) Sources() ([]Source, error) {
	rows, err := s.db.Query(`SELECT name, path, size, mod_time FROM sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.Name, &src.Path, &src.Size, &src.ModTime); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}
