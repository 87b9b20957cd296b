package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inodb/vibe-pgx/internal/guideline"
)

// LibraryCache manages a gob-serialized guideline library on disk:
//
//	{dir}/guidelines.gob       (serialized guidelines)
//	{dir}/guidelines.gob.meta  (source directory fingerprint)
type LibraryCache struct {
	dir string
}

// NewLibraryCache creates a library cache for the given directory.
func NewLibraryCache(dir string) *LibraryCache {
	return &LibraryCache{dir: dir}
}

func (lc *LibraryCache) gobPath() string {
	return filepath.Join(lc.dir, "guidelines.gob")
}

func (lc *LibraryCache) metaPath() string {
	return filepath.Join(lc.dir, "guidelines.gob.meta")
}

// Valid checks whether the cached library matches the current source files.
func (lc *LibraryCache) Valid(src FileFingerprint) bool {
	meta, err := lc.readMeta()
	if err != nil {
		return false
	}

	checks := []struct{ key, val string }{
		{"source_path", src.Path},
		{"source_size", strconv.FormatInt(src.Size, 10)},
		{"source_modtime", src.ModTime.UTC().Format(time.RFC3339Nano)},
	}
	for _, c := range checks {
		if meta[c.key] != c.val {
			return false
		}
	}

	// Verify gob file exists
	if _, err := os.Stat(lc.gobPath()); err != nil {
		return false
	}
	return true
}

// Load reads the serialized library from disk.
func (lc *LibraryCache) Load() (*guideline.Library, error) {
	f, err := os.Open(lc.gobPath())
	if err != nil {
		return nil, fmt.Errorf("open library cache: %w", err)
	}
	defer f.Close()

	var guidelines []*guideline.Guideline
	if err := gob.NewDecoder(f).Decode(&guidelines); err != nil {
		return nil, fmt.Errorf("decode library cache: %w", err)
	}
	return guideline.NewLibrary(guidelines), nil
}

// Write serializes the library to disk.
func (lc *LibraryCache) Write(lib *guideline.Library, src FileFingerprint) error {
	if err := os.MkdirAll(lc.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	f, err := os.Create(lc.gobPath())
	if err != nil {
		return fmt.Errorf("create library cache: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(lib.Guidelines); err != nil {
		f.Close()
		os.Remove(lc.gobPath())
		return fmt.Errorf("encode library cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close library cache: %w", err)
	}

	return lc.writeMeta(src)
}

// Clear removes the cached library files.
func (lc *LibraryCache) Clear() {
	os.Remove(lc.gobPath())
	os.Remove(lc.metaPath())
}

func (lc *LibraryCache) writeMeta(src FileFingerprint) error {
	lines := []string{
		"source_path=" + src.Path,
		"source_size=" + strconv.FormatInt(src.Size, 10),
		"source_modtime=" + src.ModTime.UTC().Format(time.RFC3339Nano),
		"created_at=" + time.Now().UTC().Format(time.RFC3339),
		"",
	}
	return os.WriteFile(lc.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (lc *LibraryCache) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(lc.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}

// LoadLibrary loads the guideline library in dir, using the cache when the
// directory's files are unchanged and refreshing it otherwise. A nil cache
// loads directly.
func LoadLibrary(dir string, lc *LibraryCache) (*guideline.Library, error) {
	if lc == nil {
		return guideline.LoadDir(dir)
	}

	files, err := guideline.Files(dir)
	if err != nil {
		return nil, err
	}
	src, err := StatFiles(dir, files)
	if err != nil {
		return nil, fmt.Errorf("fingerprint guidelines: %w", err)
	}

	if lc.Valid(src) {
		if lib, err := lc.Load(); err == nil {
			return lib, nil
		}
	}

	lib, err := guideline.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	if err := lc.Write(lib, src); err != nil {
		return nil, err
	}
	return lib, nil
}
