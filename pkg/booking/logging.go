package booking

import "context"

// OperationLogger records domain-level events emitted by the services.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing booking operation.
type OperationLog struct {
	Operation string
	Subject   string
	LodgingID string
	Email     string
	Detail    string
	Error     error
}

// NopLogger discards all operation logs.
type NopLogger struct{}

// LogOperation implements OperationLogger.
func (NopLogger) LogOperation(ctx context.Context, entry OperationLog) {}
