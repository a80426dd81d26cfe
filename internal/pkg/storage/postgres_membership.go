package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresMembershipStore keeps membership state in PostgreSQL. The
// schema is created on startup, so a fresh database works without
// migrations.
type PostgresMembershipStore struct {
	db *sql.DB
}

func NewPostgresMembershipStore(dsn string) (*PostgresMembershipStore, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres dsn: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	store := &PostgresMembershipStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init membership schema: %w", err)
	}
	return store, nil
}

func (s *PostgresMembershipStore) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS admins (
			user_id BIGINT PRIMARY KEY,
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS codes (
			code TEXT PRIMARY KEY,
			minutes INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			used_by BIGINT NOT NULL DEFAULT 0,
			used_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS members (
			user_id BIGINT PRIMARY KEY,
			expires_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresMembershipStore) Admins(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM admins ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query admins: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresMembershipStore) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM admins WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query admin %d: %w", userID, err)
	}
	return exists, nil
}

func (s *PostgresMembershipStore) AddAdmin(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("add admin %d: %w", userID, err)
	}
	return nil
}

func (s *PostgresMembershipStore) RemoveAdmin(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admins WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("remove admin %d: %w", userID, err)
	}
	return nil
}

func (s *PostgresMembershipStore) CreateCode(ctx context.Context, code string, minutes int) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO codes (code, minutes) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
		code, minutes)
	if err != nil {
		return fmt.Errorf("create code: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCodeExists
	}
	return nil
}

func (s *PostgresMembershipStore) GetCode(ctx context.Context, code string) (*Code, error) {
	var c Code
	err := s.db.QueryRowContext(ctx,
		`SELECT code, minutes, created_at, used_by, used_at FROM codes WHERE code = $1`,
		code).Scan(&c.Code, &c.Minutes, &c.CreatedAt, &c.UsedBy, &c.UsedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get code: %w", err)
	}
	return &c, nil
}

func (s *PostgresMembershipStore) MarkCodeUsed(ctx context.Context, code string, userID int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE codes SET used_by = $1, used_at = NOW() WHERE code = $2 AND used_by = 0`,
		userID, code)
	if err != nil {
		return fmt.Errorf("mark code used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := s.GetCode(ctx, code); err != nil {
			return err
		}
		return ErrCodeUsed
	}
	return nil
}

func (s *PostgresMembershipStore) MemberExpiry(ctx context.Context, userID int64) (*time.Time, error) {
	var expiry time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT expires_at FROM members WHERE user_id = $1`, userID).Scan(&expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("member expiry %d: %w", userID, err)
	}
	return &expiry, nil
}

func (s *PostgresMembershipStore) SetMemberExpiry(ctx context.Context, userID int64, expiry time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (user_id, expires_at, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET expires_at = EXCLUDED.expires_at, updated_at = NOW()`,
		userID, expiry)
	if err != nil {
		return fmt.Errorf("set member expiry %d: %w", userID, err)
	}
	return nil
}

func (s *PostgresMembershipStore) Close() error {
	return s.db.Close()
}
