package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	selectSlotSQL = `SELECT value FROM cart_slots WHERE key = $1`
	upsertSlotSQL = `INSERT INTO cart_slots (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	deleteSlotSQL = `DELETE FROM cart_slots WHERE key = $1`
)

// DBTX is the subset of pgxpool.Pool used by Postgres.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Postgres keeps slots in the cart_slots table.
type Postgres struct {
	db DBTX
}

// NewPostgres wraps a pool or connection.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// Get returns the value stored under key.
func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	if p == nil || p.db == nil {
		return "", false, ErrNotConfigured
	}
	var value string
	if err := p.db.QueryRow(ctx, selectSlotSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set upserts value under key.
func (p *Postgres) Set(ctx context.Context, key, value string) error {
	if p == nil || p.db == nil {
		return ErrNotConfigured
	}
	_, err := p.db.Exec(ctx, upsertSlotSQL, key, value)
	return err
}

// Delete removes key.
func (p *Postgres) Delete(ctx context.Context, key string) error {
	if p == nil || p.db == nil {
		return ErrNotConfigured
	}
	_, err := p.db.Exec(ctx, deleteSlotSQL, key)
	return err
}

// Ping checks connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.db == nil {
		return ErrNotConfigured
	}
	return p.db.Ping(ctx)
}

// Migrate applies the embedded schema to the database at databaseURL.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func migrateURL(databaseURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}
	return databaseURL
}
