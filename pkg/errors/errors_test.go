package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeSQLExecution, "statement failed")

	assert.Equal(t, ErrCodeSQLExecution, err.Code)
	assert.Equal(t, SeverityError, err.Severity)
	assert.False(t, err.Recoverable)
	assert.NotEmpty(t, err.Stack)
	assert.Contains(t, err.Error(), "[MD4004]")
	assert.Contains(t, err.Error(), "statement failed")
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, ErrCodeFileOperation, "write failed")

	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Error(), "Caused by: disk full")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "nothing"))
}

func TestWrapInheritsContext(t *testing.T) {
	inner := New(ErrCodeSQLExecution, "inner").WithContext("table", "fact_job")
	outer := Wrap(inner, ErrCodeReconcileFailed, "outer")

	assert.Equal(t, "fact_job", outer.Context["table"])
}

func TestWithContextAndSuggestions(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "bad value").
		WithContext("field", "schema").
		WithSuggestions("Fix the schema name")

	assert.Equal(t, "schema", err.Context["field"])
	assert.Contains(t, err.Error(), "1. Fix the schema name")
}

func TestIsMatchesOnCode(t *testing.T) {
	a := New(ErrCodeSQLSyntax, "one")
	b := New(ErrCodeSQLSyntax, "two")
	c := New(ErrCodeSQLTransaction, "three")

	assert.True(t, a.Is(b))
	assert.False(t, a.Is(c))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeSQLSyntax, GetErrorCode(New(ErrCodeSQLSyntax, "x")))
	assert.Equal(t, ErrCodeInternal, GetErrorCode(fmt.Errorf("plain")))
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(ValidationError("field", "v", "bad")))
	assert.False(t, IsRecoverable(New(ErrCodeInternal, "x")))
}

func TestSQLErrorClassification(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		code  ErrorCode
	}{
		{
			name:  "object not found",
			cause: fmt.Errorf("Table with name fact_job does not exist"),
			code:  ErrCodeSQLObjectNotFound,
		},
		{
			name:  "syntax error",
			cause: fmt.Errorf("Parser Error: syntax error at or near SELEC"),
			code:  ErrCodeSQLSyntax,
		},
		{
			name:  "constraint violation",
			cause: fmt.Errorf("Constraint Error: Duplicate key violates primary key constraint"),
			code:  ErrCodeSQLConstraint,
		},
		{
			name:  "generic",
			cause: fmt.Errorf("something else"),
			code:  ErrCodeSQLExecution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SQLError("failed", "SELECT 1", tt.cause)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestSQLErrorTruncatesQuery(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}

	err := SQLError("failed", string(long), fmt.Errorf("boom"))
	query := err.Context["query"].(string)
	assert.LessOrEqual(t, len(query), 203)
}

func TestTransactionHandlerRollsBackOnError(t *testing.T) {
	handler, err := NewErrorHandler(ErrorHandlerConfig{LogToFile: false, MaxLogEntries: 10})
	require.NoError(t, err)

	rolledBack := false
	th := handler.NewTransactionHandler(func() error {
		rolledBack = true
		return nil
	})

	runErr := th.Execute(func() error {
		return New(ErrCodeSQLExecution, "boom")
	})
	assert.Error(t, runErr)
	assert.True(t, rolledBack)
}

func TestTransactionHandlerSkipsRollbackAfterCommit(t *testing.T) {
	handler, err := NewErrorHandler(ErrorHandlerConfig{LogToFile: false, MaxLogEntries: 10})
	require.NoError(t, err)

	rolledBack := false
	th := handler.NewTransactionHandler(func() error {
		rolledBack = true
		return nil
	})

	runErr := th.Execute(func() error {
		th.MarkCommitted()
		return New(ErrCodeInternal, "post-commit failure")
	})
	assert.Error(t, runErr)
	assert.False(t, rolledBack)
}

func TestErrorSummary(t *testing.T) {
	handler, err := NewErrorHandler(ErrorHandlerConfig{LogToFile: false, MaxLogEntries: 10})
	require.NoError(t, err)

	handler.Handle(New(ErrCodeSQLExecution, "one"))
	handler.Handle(New(ErrCodeSQLExecution, "two"))
	handler.Handle(fmt.Errorf("plain error"))

	summary := handler.GetErrorSummary()
	assert.Equal(t, 3, summary["total_errors"])

	byCode := summary["by_code"].(map[ErrorCode]int)
	assert.Equal(t, 2, byCode[ErrCodeSQLExecution])
	assert.Equal(t, 1, byCode[ErrCodeInternal])
}
