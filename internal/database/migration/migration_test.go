package migration

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	orig := output
	output = buf
	t.Cleanup(func() { output = orig })
	return buf
}

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	t.Run("schema exists", func(t *testing.T) {
		buf := captureOutput(t)
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err = EnsureMigrated(ctx, db, time.UTC, "db")
		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "db_migration_skip")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs all steps", func(t *testing.T) {
		buf := captureOutput(t)
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS files").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_files_owner_created_at").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS file_tags").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err = EnsureMigrated(ctx, db, time.UTC, "db")
		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "db_migration_success")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("step failure", func(t *testing.T) {
		buf := captureOutput(t)
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS files").WillReturnError(errors.New("permission denied"))
		mock.ExpectRollback()

		err = EnsureMigrated(ctx, db, time.UTC, "db")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "create_table_files")
		assert.Contains(t, buf.String(), `"level":"error"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("later step failure rolls back earlier steps", func(t *testing.T) {
		captureOutput(t)
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS files").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_files_owner_created_at").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS file_tags").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err = EnsureMigrated(ctx, db, time.UTC, "db")
		assert.ErrorContains(t, err, "create_table_file_tags")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sentinel check failure", func(t *testing.T) {
		captureOutput(t)
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass").WillReturnError(errors.New("conn refused"))

		err = EnsureMigrated(ctx, db, time.UTC, "db")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sentinel")
	})
}
