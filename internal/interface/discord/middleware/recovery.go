// Package middleware contains bot middlewares applied before a command
// reaches its handler: panic recovery and access control.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOVERY MIDDLEWARE
// Catches panics in handlers. The user gets a generic reply, the log gets
// the stack, and the dispatch loop keeps running.
// ══════════════════════════════════════════════════════════════════════════════

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	// EnableStackTrace enables capturing stack traces.
	EnableStackTrace bool

	// UserErrorMessage is the reply sent when a panic occurs.
	UserErrorMessage string

	// Logger for panic reports.
	Logger *slog.Logger
}

// DefaultRecoveryConfig returns sensible defaults.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		EnableStackTrace: true,
		UserErrorMessage: "Something went wrong on my side. Please try again.",
	}
}

// PanicInfo contains information about a recovered panic.
type PanicInfo struct {
	// PanicValue is the raw panic value.
	PanicValue any

	// StackTrace is the formatted stack trace.
	StackTrace string

	// UserID is the platform user being served when the panic hit.
	UserID string

	// Command is the command that was being processed.
	Command string

	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

// RecoveryMiddleware recovers from handler panics.
type RecoveryMiddleware struct {
	config RecoveryConfig
	logger *slog.Logger
}

// NewRecoveryMiddleware creates a new recovery middleware.
func NewRecoveryMiddleware(config RecoveryConfig) *RecoveryMiddleware {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RecoveryMiddleware{
		config: config,
		logger: logger.With("component", "recovery"),
	}
}

// RecoveryResult represents the outcome of a guarded handler call.
type RecoveryResult struct {
	// Recovered indicates whether a panic was caught.
	Recovered bool

	// PanicInfo contains panic details when Recovered is true.
	PanicInfo *PanicInfo

	// UserMessage is the reply to send when Recovered is true.
	UserMessage string
}

// Execute runs the handler under panic protection. A non-panic handler
// error passes through untouched for the router to map.
func (m *RecoveryMiddleware) Execute(
	ctx context.Context,
	userID, command string,
	handler func() error,
) (result *RecoveryResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			info := &PanicInfo{
				PanicValue: r,
				UserID:     userID,
				Command:    command,
				Timestamp:  time.Now(),
			}
			if m.config.EnableStackTrace {
				info.StackTrace = string(debug.Stack())
			}
			m.logger.Error("panic recovered in handler",
				"command", command,
				"user_id", userID,
				"panic", fmt.Sprint(r),
				"stack", info.StackTrace)
			result = &RecoveryResult{
				Recovered:   true,
				PanicInfo:   info,
				UserMessage: m.config.UserErrorMessage,
			}
			err = nil
		}
	}()

	err = handler()
	return &RecoveryResult{}, err
}
