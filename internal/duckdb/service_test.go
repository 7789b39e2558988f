package duckdb

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	config := Config{
		Path:    "test.duckdb",
		Timeout: 30 * time.Second,
	}

	service := NewService(config)

	assert.NotNil(t, service)
	assert.Equal(t, config, service.config)
	assert.False(t, service.connected)
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{
			name:   "local file",
			config: Config{Path: "warehouse.duckdb"},
			want:   "warehouse.duckdb",
		},
		{
			name:   "in-memory",
			config: Config{},
			want:   "",
		},
		{
			name:   "hosted variant",
			config: Config{CloudToken: "tok123", CloudDatabase: "jobs"},
			want:   "md:jobs?motherduck_token=tok123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(tt.config)
			assert.Equal(t, tt.want, service.dsn())
		})
	}
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want int
	}{
		{
			name: "single statement",
			sql:  "SELECT 1",
			want: 1,
		},
		{
			name: "multiple statements",
			sql:  "CREATE TABLE t (id INTEGER); INSERT INTO t VALUES (1); SELECT * FROM t",
			want: 3,
		},
		{
			name: "semicolon inside single-quoted string",
			sql:  "INSERT INTO t VALUES ('a;b'); SELECT 1",
			want: 2,
		},
		{
			name: "semicolon inside double-quoted identifier",
			sql:  `SELECT "a;b" FROM t; SELECT 1`,
			want: 2,
		},
		{
			name: "trailing semicolon yields no extra statement",
			sql:  "SELECT 1;",
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statements := SplitStatements(tt.sql)

			nonEmpty := 0
			for _, stmt := range statements {
				if len(stmt) > 0 {
					nonEmpty++
				}
			}
			assert.Equal(t, tt.want, nonEmpty)
		})
	}
}

func TestExecuteSQLCommitsAllStatements(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewService(Config{})
	service.SetDB(db)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE t").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO t").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = service.ExecuteSQL("CREATE TABLE t (id INTEGER); INSERT INTO t VALUES (1)")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSQLRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewService(Config{})
	service.SetDB(db)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE t").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO t").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = service.ExecuteSQL("CREATE TABLE t (id INTEGER); INSERT INTO t VALUES (1)")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteSQLRequiresConnection(t *testing.T) {
	service := NewService(Config{})

	err := service.ExecuteSQL("SELECT 1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Not connected")
}

func TestTableExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewService(Config{})
	service.SetDB(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM information_schema.tables").
		WithArgs("warehouse", "fact_job").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := service.TableExists("warehouse", "fact_job")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRowCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	service := NewService(Config{})
	service.SetDB(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM warehouse.dim_company").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := service.RowCount("warehouse", "dim_company")
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}
