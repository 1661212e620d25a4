// Package oplog adapts the domain OperationLogger to zap.
package oplog

import (
	"context"
	"errors"

	"github.com/MarkoPoloResearchLab/staybook/pkg/booking"
	"go.uber.org/zap"
)

// ZapLogger forwards domain operation events to a zap logger.
type ZapLogger struct {
	logger *zap.Logger
}

// New returns a ZapLogger.
func New(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

// LogOperation implements booking.OperationLogger. An inconsistent-state
// signal (authenticated subject without a local profile) is logged at error
// level on its own message so it stays distinguishable from ordinary
// failures: it implies a prior partial signup.
func (zapLogger *ZapLogger) LogOperation(ctx context.Context, entry booking.OperationLog) {
	fields := make([]zap.Field, 0, 5)
	fields = append(fields, zap.String("operation", entry.Operation))
	if entry.Subject != "" {
		fields = append(fields, zap.String("subject", entry.Subject))
	}
	if entry.LodgingID != "" {
		fields = append(fields, zap.String("lodging_id", entry.LodgingID))
	}
	if entry.Email != "" {
		fields = append(fields, zap.String("email", entry.Email))
	}
	if entry.Detail != "" {
		fields = append(fields, zap.String("detail", entry.Detail))
	}
	if entry.Error == nil {
		zapLogger.logger.Info("operation", fields...)
		return
	}
	fields = append(fields, zap.Error(entry.Error))
	if errors.Is(entry.Error, booking.ErrProfileMissing) {
		zapLogger.logger.Error("inconsistent identity state", fields...)
		return
	}
	zapLogger.logger.Warn("operation failed", fields...)
}

var _ booking.OperationLogger = (*ZapLogger)(nil)
