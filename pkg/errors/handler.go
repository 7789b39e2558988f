package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"martdrop/internal/common"
)

// ErrorHandler provides centralized error handling and logging
type ErrorHandler struct {
	logFile   *os.File
	logWriter io.Writer
	errorLog  []ErrorLogEntry
	mu        sync.Mutex
	config    ErrorHandlerConfig
}

// ErrorHandlerConfig configures the error handler
type ErrorHandlerConfig struct {
	LogToFile     bool
	LogFilePath   string
	MaxLogEntries int
}

// ErrorLogEntry represents a logged error
type ErrorLogEntry struct {
	Timestamp   time.Time              `json:"timestamp"`
	Code        ErrorCode              `json:"code"`
	Severity    ErrorSeverity          `json:"severity"`
	Message     string                 `json:"message"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Stack       string                 `json:"stack,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// DefaultErrorHandlerConfig returns default configuration
func DefaultErrorHandlerConfig() ErrorHandlerConfig {
	homeDir, _ := os.UserHomeDir()
	return ErrorHandlerConfig{
		LogToFile:     true,
		LogFilePath:   filepath.Join(homeDir, ".martdrop", "errors.log"),
		MaxLogEntries: 1000,
	}
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(config ErrorHandlerConfig) (*ErrorHandler, error) {
	handler := &ErrorHandler{
		config:   config,
		errorLog: make([]ErrorLogEntry, 0),
	}

	if config.LogToFile {
		logDir := filepath.Dir(config.LogFilePath)
		if err := os.MkdirAll(logDir, common.DirPermissionNormal); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(config.LogFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, common.FilePermissionSecure)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		handler.logFile = file
		handler.logWriter = io.MultiWriter(os.Stderr, file)
	} else {
		handler.logWriter = os.Stderr
	}

	return handler, nil
}

var (
	globalHandler     *ErrorHandler
	globalHandlerOnce sync.Once
)

// GetGlobalErrorHandler returns the process-wide error handler
func GetGlobalErrorHandler() *ErrorHandler {
	globalHandlerOnce.Do(func() {
		handler, err := NewErrorHandler(DefaultErrorHandlerConfig())
		if err != nil {
			// Fall back to stderr-only logging
			handler, _ = NewErrorHandler(ErrorHandlerConfig{LogToFile: false, MaxLogEntries: 1000})
		}
		globalHandler = handler
	})
	return globalHandler
}

// Handle processes an error with full context
func (h *ErrorHandler) Handle(err error) {
	if err == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	appErr, ok := err.(*AppError)
	if !ok {
		appErr = Wrap(err, ErrCodeInternal, err.Error())
	}

	entry := ErrorLogEntry{
		Timestamp:   appErr.Timestamp,
		Code:        appErr.Code,
		Severity:    appErr.Severity,
		Message:     appErr.Message,
		Context:     appErr.Context,
		Stack:       appErr.Stack,
		Recoverable: appErr.Recoverable,
	}

	h.errorLog = append(h.errorLog, entry)
	if len(h.errorLog) > h.config.MaxLogEntries {
		h.errorLog = h.errorLog[1:]
	}

	h.writeLog(entry)
}

// writeLog writes an error entry to the log
func (h *ErrorHandler) writeLog(entry ErrorLogEntry) {
	// Format as JSON for structured logging
	jsonData, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(h.logWriter, "Failed to marshal error log: %v\n", err)
		return
	}

	fmt.Fprintln(h.logWriter, string(jsonData))
}

// GetErrorSummary returns a summary of recent errors
func (h *ErrorHandler) GetErrorSummary() map[string]interface{} {
	h.mu.Lock()
	defer h.mu.Unlock()

	bySeverity := make(map[ErrorSeverity]int)
	byCode := make(map[ErrorCode]int)
	for _, entry := range h.errorLog {
		bySeverity[entry.Severity]++
		byCode[entry.Code]++
	}

	start := len(h.errorLog) - 10
	if start < 0 {
		start = 0
	}

	return map[string]interface{}{
		"total_errors":  len(h.errorLog),
		"by_severity":   bySeverity,
		"by_code":       byCode,
		"recent_errors": h.errorLog[start:],
	}
}

// Close closes the error handler and releases resources
func (h *ErrorHandler) Close() error {
	if h.logFile != nil {
		return h.logFile.Close()
	}
	return nil
}

// TransactionHandler manages error handling for transactions
type TransactionHandler struct {
	handler      *ErrorHandler
	rollbackFunc func() error
	committed    bool
}

// NewTransactionHandler creates a new transaction handler
func (h *ErrorHandler) NewTransactionHandler(rollbackFunc func() error) *TransactionHandler {
	return &TransactionHandler{
		handler:      h,
		rollbackFunc: rollbackFunc,
	}
}

// MarkCommitted records that the transaction committed, disabling rollback
func (th *TransactionHandler) MarkCommitted() {
	th.committed = true
}

// Execute runs fn and rolls the transaction back if it returns an error
func (th *TransactionHandler) Execute(fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}

	th.handler.Handle(err)

	if th.rollbackFunc != nil && !th.committed {
		if rollbackErr := th.rollbackFunc(); rollbackErr != nil {
			th.handler.Handle(Wrap(rollbackErr, ErrCodeSQLTransaction, "Failed to rollback transaction"))
		}
	}

	return err
}
