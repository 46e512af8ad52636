package httpapi

import (
	"context"

	"github.com/knowshare/walletd/pkg/wallet"
	"go.uber.org/zap"
)

// ZapOperationLogger emits wallet operation records as structured logs.
type ZapOperationLogger struct {
	logger *zap.Logger
}

// NewZapOperationLogger wraps a zap logger as a wallet.OperationLogger.
func NewZapOperationLogger(logger *zap.Logger) *ZapOperationLogger {
	return &ZapOperationLogger{logger: logger}
}

// LogOperation implements wallet.OperationLogger.
func (operationLogger *ZapOperationLogger) LogOperation(_ context.Context, entry wallet.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("user_id", entry.UserID),
		zap.Int64("amount", entry.Amount),
		zap.String("ref", string(entry.Ref)),
		zap.String("status", entry.Status),
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		operationLogger.logger.Warn("wallet operation failed", fields...)
		return
	}
	operationLogger.logger.Info("wallet operation", fields...)
}
