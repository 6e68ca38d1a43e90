package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)

	d, err = DialectFor("")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)

	d, err = DialectFor("pgx")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	d, err = DialectFor("Postgres")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	_, err = DialectFor("mysql")
	assert.Error(t, err)
}

func TestDialectNames(t *testing.T) {
	assert.Equal(t, "sqlite", SQLite.String())
	assert.Equal(t, "sqlite", SQLite.DriverName())
	assert.Equal(t, "postgres", Postgres.String())
	assert.Equal(t, "pgx", Postgres.DriverName())
}

func TestRebindPostgres(t *testing.T) {
	got := Postgres.Rebind("SELECT id FROM photo WHERE url = ? AND id <> ?")
	assert.Equal(t, "SELECT id FROM photo WHERE url = $1 AND id <> $2", got)
}

func TestRebindSQLiteUnchanged(t *testing.T) {
	q := "DELETE FROM photo_comment WHERE photo_id = ? AND id NOT IN (?, ?)"
	assert.Equal(t, q, SQLite.Rebind(q))
}

func TestRebindWithoutPlaceholders(t *testing.T) {
	q := "SELECT id FROM account"
	assert.Equal(t, q, Postgres.Rebind(q))
}
