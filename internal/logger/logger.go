// Package logger wraps zap with the handful of helpers the site uses.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured logging.
const (
	FieldSessionID  = "session_id"
	FieldComponent  = "component"
	FieldError      = "error"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
	FieldWidth      = "width"
	FieldHeight     = "height"
	FieldCount      = "count"
	FieldAddress    = "address"
)

var (
	// Logger is the process-wide logger. It is a no-op until Initialize runs.
	Logger *zap.SugaredLogger
	// JSONOutput reports whether Initialize selected the JSON encoder.
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize builds the global logger. JSON output is meant for production,
// the console encoder for local development.
func Initialize(jsonOutput bool, level string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zapcore.InfoLevel
	}

	var zl *zap.Logger
	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		zl, err = cfg.Build()
		if err != nil {
			return err
		}
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zl = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stdout),
			lvl,
		))
	}

	JSONOutput = jsonOutput
	Logger = zl.Sugar()
	return nil
}

// Component returns a child of the global logger tagged with a component name.
func Component(name string) *zap.SugaredLogger {
	return Logger.With(FieldComponent, name)
}

// Cleanup flushes buffered entries.
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// GinMiddleware logs one line per request through zap instead of gin's
// default writer.
func GinMiddleware(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			FieldMethod, c.Request.Method,
			FieldPath, path,
			FieldStatus, status,
			FieldDurationMS, time.Since(start).Milliseconds(),
		}
		switch {
		case status >= 500:
			log.Errorw("request", fields...)
		case status >= 400:
			log.Warnw("request", fields...)
		default:
			log.Debugw("request", fields...)
		}
	}
}
