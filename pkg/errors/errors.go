package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Connection errors (1xxx)
	ErrCodeConnectionFailed ErrorCode = "MD1001"
	ErrCodeExtensionFailed  ErrorCode = "MD1002"
	ErrCodeTokenMissing     ErrorCode = "MD1003"

	// Configuration errors (2xxx)
	ErrCodeConfigNotFound   ErrorCode = "MD2001"
	ErrCodeConfigInvalid    ErrorCode = "MD2002"
	ErrCodeConfigMissing    ErrorCode = "MD2003"
	ErrCodeConfigPermission ErrorCode = "MD2004"

	// Source/extract errors (3xxx)
	ErrCodeSourceNotFound   ErrorCode = "MD3001"
	ErrCodeSourceUnreadable ErrorCode = "MD3002"
	ErrCodeStagingFailed    ErrorCode = "MD3003"

	// SQL execution errors (4xxx)
	ErrCodeSQLSyntax         ErrorCode = "MD4001"
	ErrCodeSQLTransaction    ErrorCode = "MD4002"
	ErrCodeSQLObjectNotFound ErrorCode = "MD4003"
	ErrCodeSQLExecution      ErrorCode = "MD4004"
	ErrCodeSQLConstraint     ErrorCode = "MD4005"
	ErrCodeNoResults         ErrorCode = "MD4006"

	// File system errors (5xxx)
	ErrCodeFileNotFound   ErrorCode = "MD5001"
	ErrCodeFilePermission ErrorCode = "MD5002"
	ErrCodeFileOperation  ErrorCode = "MD5003"

	// Validation errors (6xxx)
	ErrCodeValidationFailed ErrorCode = "MD6001"
	ErrCodeInvalidInput     ErrorCode = "MD6002"
	ErrCodeRequiredField    ErrorCode = "MD6003"

	// Reconciliation errors (7xxx)
	ErrCodeReconcileFailed   ErrorCode = "MD7001"
	ErrCodeSnapshotFailed    ErrorCode = "MD7002"
	ErrCodeKeyColumnMissing  ErrorCode = "MD7003"

	// System errors (9xxx)
	ErrCodeInternal ErrorCode = "MD9001"
	ErrCodeTimeout  ErrorCode = "MD9002"
	ErrCodeUnknown  ErrorCode = "MD9999"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // System failure, requires immediate attention
	SeverityError    ErrorSeverity = "ERROR"    // Operation failed, but system continues
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation succeeded with issues
	SeverityInfo     ErrorSeverity = "INFO"     // Informational, not an error
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Recoverable bool
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Severity:    SeverityError,
		Context:     make(map[string]interface{}),
		Stack:       captureStack(),
		Timestamp:   time.Now(),
		Recoverable: false,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit its context
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// AsRecoverable marks the error as recoverable
func (e *AppError) AsRecoverable() *AppError {
	e.Recoverable = true
	return e
}

// captureStack captures the current stack trace
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// Common error constructors

// ConnectionError creates a connection-related error
func ConnectionError(message string, cause error) *AppError {
	return Wrap(cause, ErrCodeConnectionFailed, message).
		WithSeverity(SeverityError).
		WithSuggestions(
			"Check the database file path and permissions",
			"Verify the DuckDB file is not opened by another process",
			"For the hosted variant, verify the cloud token is valid",
		)
}

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Run 'martdrop setup' to reconfigure",
		)
}

// SQLError creates an SQL execution error
func SQLError(message string, query string, cause error) *AppError {
	err := Wrap(cause, ErrCodeSQLExecution, message).
		WithContext("query", truncateString(query, 200))

	if cause != nil {
		errStr := cause.Error()
		switch {
		case strings.Contains(errStr, "does not exist") || strings.Contains(errStr, "not found"):
			err.Code = ErrCodeSQLObjectNotFound
			_ = err.WithSuggestions(
				"Verify the object exists in the target schema",
				"Run 'martdrop build' to create the warehouse tables",
			)
		case strings.Contains(errStr, "syntax error"):
			err.Code = ErrCodeSQLSyntax
			_ = err.WithSuggestions("Check SQL syntax near the error location")
		case strings.Contains(errStr, "Constraint Error") || strings.Contains(errStr, "violates"):
			err.Code = ErrCodeSQLConstraint
			_ = err.WithSuggestions(
				"Check for duplicate natural keys in the source extract",
				"Verify dimension rows exist before loading facts",
			)
		}
	}

	return err
}

// SourceError creates an extract/staging error
func SourceError(message string, url string, cause error) *AppError {
	return Wrap(cause, ErrCodeSourceUnreadable, message).
		WithContext("url", truncateString(url, 120)).
		WithSuggestions(
			"Verify the CSV URL is reachable",
			"Check that the httpfs extension loaded successfully",
		)
}

// ValidationError creates a validation error
func ValidationError(field string, value interface{}, reason string) *AppError {
	return New(ErrCodeValidationFailed, fmt.Sprintf("Validation failed for %s: %s", field, reason)).
		WithContext("field", field).
		WithContext("value", value).
		WithSeverity(SeverityWarning).
		AsRecoverable()
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
