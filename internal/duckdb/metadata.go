package duckdb

import (
	"database/sql"
	"errors"
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

// StatFiles combines several files into one fingerprint: the summed size
// and the latest modification time.
func StatFiles(path string, files []string) (FileFingerprint, error) {
	fp := FileFingerprint{Path: path}
	for _, f := range files {
		one, err := StatFile(f)
		if err != nil {
			return FileFingerprint{}, err
		}
		fp.Size += one.Size
		if one.ModTime.After(fp.ModTime) {
			fp.ModTime = one.ModTime
		}
	}
	return fp, nil
}

func (fp FileFingerprint) modTime() string {
	return fp.ModTime.UTC().Format(time.RFC3339Nano)
}

// SourceCurrent returns true if the named source was recorded with the same
// path, size and modification time as fp.
func (s *Store) SourceCurrent(name string, fp FileFingerprint) bool {
	var path, modTime string
	var size int64
	err := s.db.QueryRow(`SELECT path, size, mod_time FROM sources WHERE name=?`, name).Scan(&path, &size, &modTime)
	if err != nil {
		return false
	}
	return path == fp.Path && size == fp.Size && modTime == fp.modTime()
}

// RecordSource stores the fingerprint of a loaded source.
func (s *Store) RecordSource(name string, fp FileFingerprint) error {
	if _, err := s.db.Exec(`DELETE FROM sources WHERE name=?`, name); err != nil {
		return fmt.Errorf("record source: %w", err)
	}
	if _, err := s.db.Exec(`INSERT INTO sources VALUES (?, ?, ?, ?)`,
		name, fp.Path, fp.Size, fp.modTime()); err != nil {
		return fmt.Errorf("record source: %w", err)
	}
	return nil
}

// SourcePath returns the path recorded for a source, or "" if none.
func (s *Store) SourcePath(name string) (string, error) {
	var path string
	err := s.db.QueryRow(`SELECT path FROM sources WHERE name=?`, name).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query source: %w", err)
	}
	return path, nil
}
