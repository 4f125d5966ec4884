// Package store keeps an audit history of external command invocations
// in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/seqqc/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// RecordInvocation inserts inv, replacing any record with the same ID.
func (s *SQLiteStore) RecordInvocation(ctx context.Context, inv *model.Invocation) error {
	s.logger.Debug("sql", "op", "insert", "table", "invocations", "id", inv.ID)

	argvJSON, err := json.Marshal(inv.Argv)
	if err != nil {
		return fmt.Errorf("marshal argv: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO invocations (id, action, argv, output_path, exit_code, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Action, string(argvJSON), inv.OutputPath, inv.ExitCode, inv.Error,
		inv.StartedAt.UTC().Format(time.RFC3339Nano), inv.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// GetInvocation returns the invocation with the given ID, or nil when
// there is none.
func (s *SQLiteStore) GetInvocation(ctx context.Context, id string) (*model.Invocation, error) {
	s.logger.Debug("sql", "op", "select", "table", "invocations", "id", id)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, action, argv, output_path, exit_code, error, started_at, finished_at
		 FROM invocations WHERE id = ?`, id)
	inv, err := scanInvocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return inv, err
}

// ListInvocations returns a page of invocations, newest first, and the
// total number matching opts.
func (s *SQLiteStore) ListInvocations(ctx context.Context, opts model.ListOptions) ([]*model.Invocation, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "invocations", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	whereSQL := ""
	var args []any
	if opts.Action != "" {
		whereSQL = " WHERE action = ?"
		args = append(args, opts.Action)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invocations`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, argv, output_path, exit_code, error, started_at, finished_at
		 FROM invocations`+whereSQL+` ORDER BY started_at DESC, id LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invs := []*model.Invocation{}
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	return invs, total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvocation(row scanner) (*model.Invocation, error) {
	var inv model.Invocation
	var argvJSON, startedAt, finishedAt string
	if err := row.Scan(&inv.ID, &inv.Action, &argvJSON, &inv.OutputPath, &inv.ExitCode, &inv.Error,
		&startedAt, &finishedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(argvJSON), &inv.Argv); err != nil {
		return nil, fmt.Errorf("unmarshal argv: %w", err)
	}
	inv.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	inv.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt)
	return &inv, nil
}
