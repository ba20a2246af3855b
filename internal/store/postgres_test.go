package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}

type fakeDB struct {
	rows    map[string]string
	execs   []string
	pingErr error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	key := args[0].(string)
	switch sql {
	case upsertSlotSQL:
		f.rows[key] = args[1].(string)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case deleteSlotSQL:
		delete(f.rows, key)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected statement")
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	v, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{value: v}
}

func (f *fakeDB) Ping(context.Context) error { return f.pingErr }

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{rows: map[string]string{}}
	s := NewPostgres(db)

	_, ok, err := s.Get(ctx, "shopping_cart")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "shopping_cart", `{"Apple":2}`))
	require.NoError(t, s.Set(ctx, "shopping_cart", `{"Apple":3}`))
	v, ok, err := s.Get(ctx, "shopping_cart")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"Apple":3}`, v)

	require.NoError(t, s.Delete(ctx, "shopping_cart"))
	_, ok, err = s.Get(ctx, "shopping_cart")
	require.NoError(t, err)
	require.False(t, ok)
	require.Len(t, db.execs, 3)
}

func TestPostgresStorePropagatesErrors(t *testing.T) {
	db := &fakeDB{rows: map[string]string{}, pingErr: errors.New("down")}
	require.EqualError(t, NewPostgres(db).Ping(context.Background()), "down")
	require.ErrorIs(t, NewPostgres(nil).Set(context.Background(), "k", "v"), ErrNotConfigured)
}

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@db:5432/cart", migrateURL("postgres://u:p@db:5432/cart"))
	require.Equal(t, "pgx5://db/cart", migrateURL("postgresql://db/cart"))
	require.Equal(t, "pgx5://db/cart", migrateURL("pgx5://db/cart"))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
