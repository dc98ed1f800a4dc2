package common

import "context"

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyBankID    contextKey = "bank_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithBankID adds the bank a request operates on to the context
func WithBankID(ctx context.Context, bankID string) context.Context {
	return context.WithValue(ctx, ContextKeyBankID, bankID)
}

// BankIDFromContext extracts the bank ID from context
func BankIDFromContext(ctx context.Context) string {
	if bankID, ok := ctx.Value(ContextKeyBankID).(string); ok {
		return bankID
	}
	return ""
}
