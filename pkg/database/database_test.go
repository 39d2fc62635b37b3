package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Abraxas-365/authcore/pkg/config"
	"github.com/Abraxas-365/authcore/pkg/database"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Hash      string    `db:"password_hash"`
	CreatedAt time.Time `db:"created_at"`
}

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "auth.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db))
	return db
}

func TestEmailUniqueConstraint(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	insert := `INSERT INTO _user (id, email, password_hash, created_at)
		VALUES (:id, :email, :password_hash, :created_at)`

	n, err := database.Execute(ctx, db, insert, row{ID: "1", Email: "a@example.com", Hash: "h", CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = database.Execute(ctx, db, insert, row{ID: "2", Email: "a@example.com", Hash: "h", CreatedAt: time.Now()})
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestQueryOne(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	missing, err := database.QueryOne[row](ctx, db,
		db.Rebind(`SELECT id, email, password_hash, created_at FROM _user WHERE email = ?`), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = database.Execute(ctx, db,
		`INSERT INTO _user (id, email, password_hash, created_at) VALUES (:id, :email, :password_hash, :created_at)`,
		row{ID: "1", Email: "a@example.com", Hash: "h", CreatedAt: time.Now()})
	require.NoError(t, err)

	found, err := database.QueryOne[row](ctx, db,
		db.Rebind(`SELECT id, email, password_hash, created_at FROM _user WHERE email = ?`), "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "1", found.ID)
}

func TestIsUniqueViolationForeignError(t *testing.T) {
	assert.False(t, database.IsUniqueViolation(assert.AnError))
	assert.False(t, database.IsUniqueViolation(nil))
}
