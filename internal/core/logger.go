package core

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init initializes zap's global logger.
// After calling this, use zap.L() directly.
func Init(pretty bool) error {
	var config zap.Config

	if pretty {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	zap.ReplaceGlobals(logger)
	return nil
}

// LogToolExecution logs a tool execution event using zap's global logger.
func LogToolExecution(toolName string, duration float64, err error) {
	fields := []zap.Field{
		zap.String("tool", toolName),
		zap.Float64("duration_seconds", duration),
		zap.Bool("success", err == nil),
	}

	if err != nil {
		fields = append(fields, zap.Error(err))
		zap.L().Error("Tool execution failed", fields...)
		return
	}

	zap.L().Info("Tool execution completed successfully", fields...)
}

// LogRequest logs an MCP request using zap's global logger.
func LogRequest(method string, duration float64, err error) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.Float64("duration_seconds", duration),
	}

	if err != nil {
		fields = append(fields, zap.Error(err))
		zap.L().Error("Request failed", fields...)
		return
	}

	zap.L().Info("Request completed successfully", fields...)
}

// LogProviderEvent logs a provider lifecycle transition (connect, restart,
// health-state change, shutdown) with the provider's slug attached.
func LogProviderEvent(slug, event string, fields ...zap.Field) {
	allFields := append([]zap.Field{zap.String("slug", slug), zap.String("event", event)}, fields...)
	zap.L().Info("Provider event", allFields...)
}

// LogPanicRecovery logs a panic that was recovered from, along with the
// stack trace captured at the recover site.
func LogPanicRecovery(component string, panicValue any) {
	zap.L().Error("Panic recovered",
		zap.String("component", component),
		zap.Any("panic_value", panicValue),
		zap.String("stack", string(debug.Stack())),
	)
}

// LogDeferredError logs the error returned by fn, if any. Intended for use
// in defer statements wrapping Close/Stop-style cleanup calls whose errors
// would otherwise be silently dropped.
func LogDeferredError(fn func() error) {
	if err := fn(); err != nil {
		zap.L().Error("Deferred error", zap.Error(err), zap.String("stack", string(debug.Stack())))
	}
}
