package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/dialect"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDB(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		want    string
	}{
		{"Postgres", dialect.Postgres, dialect.Postgres},
		{"MySQL", dialect.MySQL, dialect.MySQL},
		{"SQLite", dialect.SQLite, dialect.SQLite},
		{"Wrapped", "sqlite-traced", dialect.SQLite},
		{"Unknown", "oracle", "oracle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.dialect, db)
			assert.Equal(t, tt.want, drv.Dialect())
		})
	}
}

func TestOpenSettings(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		_, err := OpenSettings(dialect.Settings{Dialect: "oracle", ConnectionString: "x"})
		require.True(t, fluentmap.IsConfigError(err))
	})
	t.Run("sqlite", func(t *testing.T) {
		require := require.New(t)
		ctx := context.Background()
		drv, err := OpenSettings(dialect.ForSQLite(":memory:"))
		require.NoError(err)
		defer drv.Close()
		drv.DB().SetMaxOpenConns(1)

		require.NoError(drv.Exec(ctx, "CREATE TABLE regions (id INTEGER PRIMARY KEY, name TEXT)", []any{}, nil))
		var res Result
		require.NoError(drv.Exec(ctx, "INSERT INTO regions (name) VALUES (?)", []any{"north"}, &res))
		n, err := res.RowsAffected()
		require.NoError(err)
		require.EqualValues(1, n)

		rows := &Rows{}
		require.NoError(drv.Query(ctx, "SELECT name FROM regions", []any{}, rows))
		defer rows.Close()
		require.True(rows.Next())
		var name string
		require.NoError(rows.Scan(&name))
		require.Equal("north", name)
	})
}

func TestDriver_Logger(t *testing.T) {
	require := require.New(t)
	db, mock, err := sqlmock.New()
	require.NoError(err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := OpenDB(dialect.Postgres, db, WithLogger(logger))

	mock.ExpectExec("CREATE TABLE clients").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM clients").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	ctx := context.Background()
	require.NoError(drv.Exec(ctx, "CREATE TABLE clients (id int)", []any{}, nil))
	tx, err := drv.Tx(ctx)
	require.NoError(err)
	rows := &Rows{}
	require.NoError(tx.Query(ctx, "SELECT id FROM clients", []any{}, rows))
	require.NoError(rows.Close())
	require.NoError(tx.Commit())
	require.NoError(mock.ExpectationsWereMet())

	out := buf.String()
	require.Contains(out, "msg=exec")
	require.Contains(out, `query="CREATE TABLE clients (id int)"`)
	require.Contains(out, "msg=\"begin transaction\"")
	require.Contains(out, "msg=query")
	require.Contains(out, "msg=\"commit transaction\"")
}

func TestDriver_InvalidArguments(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.MySQL, db)
	ctx := context.Background()

	require.ErrorContains(t, drv.Exec(ctx, "SELECT 1", "x", nil), "expect []any for args")
	require.ErrorContains(t, drv.Exec(ctx, "SELECT 1", []any{}, new(int)), "expect *sql.Result")
	require.ErrorContains(t, drv.Query(ctx, "SELECT 1", []any{}, new(int)), "expect *sql.Rows")
}

func TestDriverTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.Postgres, db)

	t.Run("commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE regions").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		tx, err := drv.Tx(context.Background())
		require.NoError(t, err)
		require.NoError(t, tx.Exec(context.Background(), "CREATE TABLE regions (id int)", []any{}, nil))
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE regions").WillReturnError(errors.New("relation exists"))
		mock.ExpectRollback()

		tx, err := drv.Tx(context.Background())
		require.NoError(t, err)
		err = tx.Exec(context.Background(), "CREATE TABLE regions (id int)", []any{}, nil)
		require.ErrorContains(t, err, "relation exists")
		require.NoError(t, tx.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWithVars(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)
	drv := OpenDB(dialect.Postgres, db)

	t.Run("pooled", func(t *testing.T) {
		mock.ExpectExec("SET search_path = 'sales'").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE clients").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("RESET search_path").WillReturnResult(sqlmock.NewResult(0, 0))

		ctx := WithVar(context.Background(), "search_path", "sales")
		require.NoError(t, drv.Exec(ctx, "CREATE TABLE clients (id int)", []any{}, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rows release the connection", func(t *testing.T) {
		mock.ExpectExec("SET search_path = 'sales'").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectExec("RESET search_path").WillReturnResult(sqlmock.NewResult(0, 0))

		rows := &Rows{}
		ctx := WithVar(context.Background(), "search_path", "sales")
		require.NoError(t, drv.Query(ctx, "SELECT 1", []any{}, rows))
		require.NoError(t, rows.Close())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("SET search_path = 'sales'").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE clients").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		tx, err := drv.Tx(context.Background())
		require.NoError(t, err)
		ctx := WithVar(context.Background(), "search_path", "sales")
		require.NoError(t, tx.Exec(ctx, "CREATE TABLE clients (id int)", []any{}, nil))
		require.NoError(t, tx.Commit())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("escaped value", func(t *testing.T) {
		mock.ExpectExec(`SET application_name = 'it''s'`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("SELECT 1").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("RESET application_name").WillReturnResult(sqlmock.NewResult(0, 0))

		ctx := WithVar(context.Background(), "application_name", "it's")
		require.NoError(t, drv.Exec(ctx, "SELECT 1", []any{}, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid name", func(t *testing.T) {
		ctx := WithVar(context.Background(), "x; DROP TABLE clients; --", "y")
		err := drv.Exec(ctx, "SELECT 1", []any{}, nil)
		require.ErrorContains(t, err, "invalid session variable name")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWithVars_SQLite(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	drv := OpenDB(dialect.SQLite, db)

	err = drv.Exec(WithVar(context.Background(), "foo", "bar"), "SELECT 1", []any{}, nil)
	require.ErrorContains(t, err, "not supported by sqlite")
}

func TestVarFromContext(t *testing.T) {
	ctx := WithVar(context.Background(), "search_path", "sales")
	shadow := WithVar(ctx, "search_path", "crm")

	v, ok := VarFromContext(shadow, "search_path")
	require.True(t, ok)
	require.Equal(t, "crm", v)
	v, _ = VarFromContext(ctx, "search_path")
	require.Equal(t, "sales", v, "parent context is not modified")
	_, ok = VarFromContext(ctx, "missing")
	require.False(t, ok)
}

func TestEscapeStringValue(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"it's", "it''s"},
		{`a\b`, `a\\b`},
		{`\'`, `\\''`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeStringValue(tt.in))
	}
}

func TestStatsDriver(t *testing.T) {
	require := require.New(t)
	db, mock, err := sqlmock.New()
	require.NoError(err)
	defer db.Close()

	var slow []string
	drv := NewStatsDriver(OpenDB(dialect.MySQL, db),
		WithSlowThreshold(-1),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)
	mock.ExpectExec("CREATE TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE b").WillReturnError(errors.New("boom"))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectCommit()

	ctx := context.Background()
	require.NoError(drv.Exec(ctx, "CREATE TABLE a (id int)", []any{}, nil))
	require.Error(drv.Exec(ctx, "CREATE TABLE b (id int)", []any{}, nil))
	tx, err := drv.Tx(ctx)
	require.NoError(err)
	rows := &Rows{}
	require.NoError(tx.Query(ctx, "SELECT 1", []any{}, rows))
	require.NoError(rows.Close())
	require.NoError(tx.Commit())
	require.NoError(mock.ExpectationsWereMet())

	s := drv.QueryStats().Stats()
	require.EqualValues(2, s.TotalExecs)
	require.EqualValues(1, s.TotalQueries)
	require.EqualValues(1, s.Errors)
	require.EqualValues(3, s.SlowQueries)
	require.Len(slow, 3)
	require.Equal(map[string]int64{"CREATE TABLE": 2}, s.Statements)
	require.Contains(s.String(), "execs=2")
	require.Contains(s.String(), `"CREATE TABLE"=2`)

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("schema applied", "stats", s)
	require.Contains(buf.String(), "stats.execs=2")
	require.Contains(buf.String(), "stats.create_table=2")

	drv.QueryStats().Reset()
	require.Zero(drv.QueryStats().Stats().TotalExecs)
	require.Empty(drv.QueryStats().Stats().Statements)
}

func TestStatementVerb(t *testing.T) {
	tests := map[string]string{
		"create table `a` (id int)":         "CREATE TABLE",
		"CREATE UNIQUE INDEX a_key ON a(b)": "CREATE INDEX",
		"ALTER TABLE a ADD b int":           "ALTER TABLE",
		"  insert into a values (1)":        "INSERT",
		"":                                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, verb(in), in)
	}
}
