// Package duckdb provides persistent storage for phenotype tables and match results.
// Phenotype tables and results are kept in DuckDB (queryable, append-only).
// Parsed guideline libraries are cached as gob files (fast, pure Go).
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for phenotype tables and match results.
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
			return nil, fmt.Errorf("create database directory: %w", err)
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
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS gene_phenotypes (
			gene VARCHAR,
			diplotype VARCHAR,
			phenotype VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS guideline_results (
			run_id VARCHAR,
			created_at TIMESTAMP,
			guideline_id VARCHAR,
			guideline_name VARCHAR,
			state VARCHAR,
			related_genes VARCHAR,
			uncalled_genes VARCHAR,
			group_id VARCHAR,
			group_name VARCHAR,
			signature VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS sources (
			name VARCHAR PRIMARY KEY,
			path VARCHAR,
			size BIGINT,
			mod_time VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	// Index for per-gene phenotype lookups
	s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_gene_phenotypes ON gene_phenotypes (gene)`)
	return nil
}

// withAppender runs fn with an Appender on table and flushes it.
func (s *Store) withAppender(table string, fn func(a *goduckdb.Appender) error) error {
	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	return appendRows(conn, table, fn)
}

// replaceRows deletes every row of table and appends new ones with fn in a
// single transaction. On error the previous rows are kept.
func (s *Store) replaceRows(table string, fn func(a *goduckdb.Appender) error) (err error) {
	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			conn.ExecContext(ctx, "ROLLBACK")
		}
	}()

	if _, err := conn.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := appendRows(conn, table, fn); err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// appendRows creates an Appender on conn, runs fn and closes the appender,
// which flushes the rows.
func appendRows(conn *sql.Conn, table string, fn func(a *goduckdb.Appender) error) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}

	if err := fn(appender); err != nil {
		appender.Close()
		return err
	}
	if err := appender.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", table, err)
	}
	return nil
}
