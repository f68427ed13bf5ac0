// internal/app/system/auditlog/logger.go
//
// auditlog records evaluated access decisions to the decisions collection
// and/or structured logs, controlled by configuration.
package auditlog

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/classhub/internal/app/store/decisions"
)

// Config holds decision audit configuration.
type Config struct {
	// Decisions controls where evaluated decisions are recorded.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only),
	// "off" (disabled).
	Decisions string
}

// Logger records access decisions. It writes to MongoDB (via
// decisions.Store) and structured logs (via zap) per Config.
type Logger struct {
	store  *decisions.Store
	zapLog *zap.Logger
	config Config
}

// New creates a decision audit Logger.
func New(store *decisions.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// ClientIP extracts the client IP from the request.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(rec decisions.Record) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("actor", rec.Actor),
		zap.String("operation", rec.Operation),
		zap.String("path", rec.Path),
		zap.Bool("allowed", rec.Allowed),
		zap.String("source", rec.Source),
	}
	if rec.Rule != "" {
		fields = append(fields, zap.String("rule", rec.Rule))
	}
	if rec.Ruleset != "" {
		fields = append(fields, zap.String("ruleset", rec.Ruleset))
	}
	if rec.IP != "" {
		fields = append(fields, zap.String("ip", rec.IP))
	}

	if rec.Allowed {
		l.zapLog.Info("access decision", fields...)
	} else {
		l.zapLog.Warn("access decision", fields...)
	}
}

// Record stores one decision based on configuration. A nil Logger is a
// no-op, which lets tests skip audit wiring.
func (l *Logger) Record(ctx context.Context, rec decisions.Record) {
	if l == nil {
		return
	}

	setting := l.config.Decisions
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(rec)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Insert(ctx, rec); err != nil {
			l.zapLog.Error("failed to store decision record",
				zap.Error(err),
				zap.String("path", rec.Path),
			)
		}
	}
}
