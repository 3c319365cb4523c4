package utils

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger is the logging facade handlers depend on; slog backs it in
// production, tests can substitute a recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// SlogLogger adapts *slog.Logger to the Logger interface.
type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

const contextLoggerKey = "logger"

// ContextLogger stores a request-scoped logger carrying the request id.
func ContextLogger(base Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestLogger := base
		if requestID := c.GetString("request_id"); requestID != "" {
			requestLogger = base.With("request_id", requestID)
		}
		c.Set(contextLoggerKey, requestLogger)
		c.Next()
	}
}

// FromContext returns the request-scoped logger, falling back to the given
// default when the middleware did not run.
func FromContext(c *gin.Context, fallback Logger) Logger {
	if v, exists := c.Get(contextLoggerKey); exists {
		if logger, ok := v.(Logger); ok {
			return logger
		}
	}
	return fallback
}

// LoggerMiddleware emits one structured access log line per request.
func LoggerMiddleware(base Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger := FromContext(c, base)
		logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP())
	}
}
