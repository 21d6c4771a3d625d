// Package storage persists users and records in SQLite. Every record
// query is scoped by the owning user id so one user can never see or
// mutate another user's rows.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"notas/internal/core"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound signals "not found or not owned" on single-row lookups
	// and on updates that matched zero rows.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateUser signals a username collision at registration.
	ErrDuplicateUser = errors.New("username already exists")
)

// User is a stored account. The password digest never leaves this package
// except for verification.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// SyncItem is the bookkeeping row the worker needs to mirror a record.
type SyncItem struct {
	ID      int64
	Version int64
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// The foreign_keys pragma must be set per connection for the
	// ON DELETE CASCADE on notas.user_id to take effect.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a new account and returns its id.
func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "username", username)
	return id, nil
}

// UserByUsername looks an account up for login.
func (r *Repository) UserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// ListRecords returns the user's records, newest date first.
func (r *Repository) ListRecords(ctx context.Context, userID int64) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, data, empresa, numero, valor_cents, observacoes
		 FROM notas WHERE user_id = ? ORDER BY data DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	records := []core.Record{}
	for rows.Next() {
		var rec core.Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.Company,
			&rec.Number, &rec.Amount.Cents, &rec.Note); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// GetRecord fetches a single record by id regardless of owner. It exists
// for the sync worker; API handlers go through the user-scoped methods.
func (r *Repository) GetRecord(ctx context.Context, id int64) (core.Record, error) {
	var rec core.Record
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, data, empresa, numero, valor_cents, observacoes
		 FROM notas WHERE id = ?`,
		id).Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.Company,
		&rec.Number, &rec.Amount.Cents, &rec.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("select record: %w", err)
	}
	return rec, nil
}

// CreateRecord inserts a record for its owner and returns the new id.
func (r *Repository) CreateRecord(ctx context.Context, rec core.Record) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notas (user_id, data, empresa, numero, valor_cents, observacoes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.Date, rec.Company, rec.Number, rec.Amount.Cents, rec.Note)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record insert id: %w", err)
	}

	slog.InfoContext(ctx, "Record created",
		"id", id, "user_id", rec.UserID, "data", rec.Date, "valor_cents", rec.Amount.Cents)
	return id, nil
}

// UpdateRecord replaces all fields of the record identified by rec.ID,
// scoped by rec.UserID. Zero matched rows yield ErrNotFound so callers can
// distinguish "not found or not owned" from a storage failure.
func (r *Repository) UpdateRecord(ctx context.Context, rec core.Record) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notas
		 SET data = ?, empresa = ?, numero = ?, valor_cents = ?, observacoes = ?,
		     sync_status = 'pending', version = version + 1,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		rec.Date, rec.Company, rec.Number, rec.Amount.Cents, rec.Note,
		rec.ID, rec.UserID)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecord removes the record when it belongs to the user, returning
// the deleted row so the caller can publish a delete event. ErrNotFound
// means nothing matched; the API treats that as success.
func (r *Repository) DeleteRecord(ctx context.Context, id, userID int64) (core.Record, error) {
	rec, err := r.GetRecord(ctx, id)
	if err != nil {
		return core.Record{}, err
	}
	if rec.UserID != userID {
		return core.Record{}, ErrNotFound
	}
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM notas WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return core.Record{}, fmt.Errorf("delete record: %w", err)
	}

	slog.InfoContext(ctx, "Record deleted", "id", id, "user_id", userID)
	return rec, nil
}

// RecordVersion returns the current version of a record.
func (r *Repository) RecordVersion(ctx context.Context, id int64) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx,
		`SELECT version FROM notas WHERE id = ?`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("select record version: %w", err)
	}
	return version, nil
}

// PendingSync lists records still waiting to be mirrored, oldest first.
func (r *Repository) PendingSync(ctx context.Context, limit int) ([]SyncItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version FROM notas WHERE sync_status = 'pending'
		 ORDER BY updated_at ASC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("select pending sync: %w", err)
	}
	defer rows.Close()

	var items []SyncItem
	for rows.Next() {
		var it SyncItem
		if err := rows.Scan(&it.ID, &it.Version); err != nil {
			return nil, fmt.Errorf("scan sync item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// MarkSynced records that the given version reached the mirror. A stale
// version leaves the row pending so the newer state gets synced too.
func (r *Repository) MarkSynced(ctx context.Context, id, version int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notas SET sync_status = 'synced' WHERE id = ? AND version = ?`,
		id, version)
	if err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

// MarkSyncError flags a record whose mirror write keeps failing.
func (r *Repository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notas SET sync_status = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "id", id)
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
