package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestInit_PrettyLog tests logger initialization with pretty logging
func TestInit_PrettyLog(t *testing.T) {
	err := Init(true)
	require.NoError(t, err)

	logger := zap.L()
	assert.NotNil(t, logger)
	logger.Info("Test message")
}

// TestInit_JSONLog tests logger initialization with JSON logging
func TestInit_JSONLog(t *testing.T) {
	err := Init(false)
	require.NoError(t, err)

	logger := zap.L()
	assert.NotNil(t, logger)
	logger.Info("Test message")
}

// TestLogToolExecution_Success tests logging a successful tool execution
func TestLogToolExecution_Success(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	zap.ReplaceGlobals(logger)

	LogToolExecution("test-tool", 1.5, nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Tool execution completed successfully", entry.Message)
	assert.Equal(t, zap.InfoLevel, entry.Level)

	assert.Equal(t, "test-tool", entry.ContextMap()["tool"])
	assert.Equal(t, 1.5, entry.ContextMap()["duration_seconds"])
	assert.Equal(t, true, entry.ContextMap()["success"])
}

// TestLogToolExecution_Error tests logging a failed tool execution
func TestLogToolExecution_Error(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)
	zap.ReplaceGlobals(logger)

	testErr := errors.New("execution failed")
	LogToolExecution("test-tool", 2.0, testErr)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Tool execution failed", entry.Message)
	assert.Equal(t, zap.ErrorLevel, entry.Level)

	assert.Equal(t, "test-tool", entry.ContextMap()["tool"])
	assert.Equal(t, 2.0, entry.ContextMap()["duration_seconds"])
	assert.Equal(t, false, entry.ContextMap()["success"])
	assert.NotNil(t, entry.ContextMap()["error"])
}

// TestLogRequest_Success tests logging a successful request
func TestLogRequest_Success(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	zap.ReplaceGlobals(logger)

	LogRequest("tools/list", 0.1, nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Request completed successfully", entry.Message)
	assert.Equal(t, zap.InfoLevel, entry.Level)

	assert.Equal(t, "tools/list", entry.ContextMap()["method"])
	assert.Equal(t, 0.1, entry.ContextMap()["duration_seconds"])
}

// TestLogRequest_Error tests logging a failed request
func TestLogRequest_Error(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)
	zap.ReplaceGlobals(logger)

	testErr := errors.New("request failed")
	LogRequest("tools/call", 0.5, testErr)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Request failed", entry.Message)
	assert.Equal(t, zap.ErrorLevel, entry.Level)

	assert.Equal(t, "tools/call", entry.ContextMap()["method"])
	assert.Equal(t, 0.5, entry.ContextMap()["duration_seconds"])
	assert.NotNil(t, entry.ContextMap()["error"])
}

// TestLogProviderEvent tests logging a provider lifecycle event
func TestLogProviderEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	zap.ReplaceGlobals(logger)

	LogProviderEvent("aws", "restarted", zap.Int("attempt", 3))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Provider event", entry.Message)
	assert.Equal(t, "aws", entry.ContextMap()["slug"])
	assert.Equal(t, "restarted", entry.ContextMap()["event"])
	assert.EqualValues(t, 3, entry.ContextMap()["attempt"])
}

// TestLogPanicRecovery tests logging a recovered panic
func TestLogPanicRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)
	zap.ReplaceGlobals(logger)

	panicValue := "test panic"
	LogPanicRecovery("test-component", panicValue)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Panic recovered", entry.Message)
	assert.Equal(t, zap.ErrorLevel, entry.Level)

	assert.Equal(t, "test-component", entry.ContextMap()["component"])
	assert.Equal(t, panicValue, entry.ContextMap()["panic_value"])
	assert.NotEmpty(t, entry.ContextMap()["stack"])
}

// TestLogDeferredError_WithError tests LogDeferredError when fn returns an error
func TestLogDeferredError_WithError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)
	zap.ReplaceGlobals(logger)

	testErr := errors.New("deferred error")
	LogDeferredError(func() error {
		return testErr
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Deferred error", entry.Message)
	assert.Equal(t, zap.ErrorLevel, entry.Level)
	assert.NotNil(t, entry.ContextMap()["error"])
}

// TestLogDeferredError_NoError tests LogDeferredError when fn returns no error
func TestLogDeferredError_NoError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)
	zap.ReplaceGlobals(logger)

	LogDeferredError(func() error {
		return nil
	})

	assert.Equal(t, 0, logs.Len())
}
