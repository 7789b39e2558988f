package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"martdrop/pkg/errors"
)

// Service provides DuckDB database operations
type Service struct {
	db           *sql.DB
	config       Config
	connected    bool
	errorHandler *errors.ErrorHandler
}

// Config holds DuckDB connection configuration
type Config struct {
	// Path is the database file; empty means an in-memory database.
	Path string
	// CloudToken enables the hosted variant when set.
	CloudToken string
	// CloudDatabase is the hosted database name, required with CloudToken.
	CloudDatabase string
	Timeout       time.Duration
}

// NewService creates a new DuckDB service
func NewService(config Config) *Service {
	return &Service{
		config:       config,
		errorHandler: errors.GetGlobalErrorHandler(),
	}
}

// dsn builds the driver connection string.
func (s *Service) dsn() string {
	if s.config.CloudToken != "" {
		return fmt.Sprintf("md:%s?motherduck_token=%s", s.config.CloudDatabase, s.config.CloudToken)
	}
	return s.config.Path
}

// Connect opens the database and loads the httpfs extension so remote
// CSV extracts can be read directly.
func (s *Service) Connect() error {
	if s.connected {
		return nil
	}

	db, err := sql.Open("duckdb", s.dsn())
	if err != nil {
		return errors.ConnectionError("Failed to open DuckDB database", err).
			WithContext("path", s.config.Path)
	}

	// Single-writer engine; one connection is the whole discipline.
	db.SetMaxOpenConns(1)

	ctx, cancel := s.getContext()
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.ConnectionError("Failed to connect to DuckDB", err).
			WithContext("path", s.config.Path)
	}

	for _, stmt := range []string{"INSTALL httpfs", "LOAD httpfs"} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return errors.Wrap(err, errors.ErrCodeExtensionFailed, "Failed to load httpfs extension").
				WithSuggestions(
					"Check network access for extension download",
					"Verify the DuckDB extension repository is reachable",
				)
		}
	}

	s.db = db
	s.connected = true
	return nil
}

// Close closes the database connection
func (s *Service) Close() error {
	if !s.connected {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	s.connected = false
	return nil
}

// ExecuteFile executes SQL statements from a file
func (s *Service) ExecuteFile(path string) error {
	if !s.connected {
		return fmt.Errorf("not connected to database")
	}

	// Note: path is already validated by the caller
	content, err := os.ReadFile(path) // #nosec G304 - path should be validated by caller
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return s.ExecuteSQL(string(content))
}

// ExecuteSQL executes one or more SQL statements inside a transaction.
// Either every statement commits or none do.
func (s *Service) ExecuteSQL(sqlText string) error {
	if !s.connected {
		return errors.New(errors.ErrCodeConnectionFailed, "Not connected to database").
			WithSuggestions("Call Connect() before executing SQL")
	}

	ctx, cancel := s.getContext()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to begin transaction")
	}

	txHandler := s.errorHandler.NewTransactionHandler(tx.Rollback)

	return txHandler.Execute(func() error {
		statements := SplitStatements(sqlText)

		for i, stmt := range statements {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}

			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return errors.SQLError(
					fmt.Sprintf("Failed to execute statement %d", i+1),
					stmt,
					err,
				).WithContext("statement_index", i+1).
					WithContext("total_statements", len(statements))
			}
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrap(err, errors.ErrCodeSQLTransaction, "Failed to commit transaction")
		}
		txHandler.MarkCommitted()

		return nil
	})
}

// ExecuteDirectory executes all SQL files in a directory in lexical
// order, halting on the first error.
func (s *Service) ExecuteDirectory(dir, pattern string) error {
	if !s.connected {
		return fmt.Errorf("not connected to database")
	}

	if pattern == "" {
		pattern = "*.sql"
	}

	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		if err := s.ExecuteFile(file); err != nil {
			return fmt.Errorf("failed to execute %s: %w", file, err)
		}
	}

	return nil
}

// ExecuteQuery executes a query and returns results. The rows are
// consumed by the caller, so no statement timeout is attached.
func (s *Service) ExecuteQuery(query string, args ...interface{}) (*sql.Rows, error) {
	if !s.connected {
		return nil, fmt.Errorf("not connected to database")
	}

	return s.db.QueryContext(context.Background(), query, args...)
}

// QueryRow executes a query expected to return a single row
func (s *Service) QueryRow(query string, args ...interface{}) *sql.Row {
	return s.db.QueryRowContext(context.Background(), query, args...)
}

// BeginTransaction starts a new transaction. The transaction outlives
// this call, so it cannot carry the per-statement timeout context.
func (s *Service) BeginTransaction() (*sql.Tx, error) {
	if !s.connected {
		return nil, fmt.Errorf("not connected to database")
	}

	return s.db.BeginTx(context.Background(), nil)
}

// TableExists reports whether a table exists in the given schema.
func (s *Service) TableExists(schema, table string) (bool, error) {
	if !s.connected {
		return false, fmt.Errorf("not connected to database")
	}

	var count int
	row := s.QueryRow(
		"SELECT count(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
		schema, table,
	)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return count > 0, nil
}

// RowCount returns the number of rows in a table.
func (s *Service) RowCount(schema, table string) (int64, error) {
	if !s.connected {
		return 0, fmt.Errorf("not connected to database")
	}

	var count int64
	row := s.QueryRow(fmt.Sprintf("SELECT count(*) FROM %s.%s", schema, table))
	if err := row.Scan(&count); err != nil {
		return 0, errors.SQLError(
			fmt.Sprintf("Failed to count rows in %s.%s", schema, table),
			"SELECT count(*)", err,
		)
	}
	return count, nil
}

// Helper methods

func (s *Service) getContext() (context.Context, context.CancelFunc) {
	timeout := s.config.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return context.WithTimeout(context.Background(), timeout)
}

// SplitStatements splits a SQL script on semicolons not within strings.
func SplitStatements(sqlText string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	stringChar := rune(0)

	for i, char := range sqlText {
		if !inString {
			if char == '\'' || char == '"' {
				inString = true
				stringChar = char
			} else if char == ';' {
				// Check if it's not escaped
				if i == 0 || sqlText[i-1] != '\\' {
					statements = append(statements, current.String())
					current.Reset()
					continue
				}
			}
		} else {
			if char == stringChar && (i == 0 || sqlText[i-1] != '\\') {
				inString = false
			}
		}
		current.WriteRune(char)
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}

// GetDB returns the underlying database connection
func (s *Service) GetDB() *sql.DB {
	return s.db
}

// SetDB injects a database handle; used by tests with sqlmock.
func (s *Service) SetDB(db *sql.DB) {
	s.db = db
	s.connected = true
}
