package middleware

import (
	"context"

	"github.com/eliteacai/pdv-backend/pkg/auth"
	"github.com/eliteacai/pdv-backend/pkg/enums"
)

type contextKey string

const (
	ctxOperator contextKey = "operator"
	ctxStoreID  contextKey = "store_id"
)

// OperatorFromContext returns the authenticated operator. A nil operator means
// the request came from an anonymous terminal.
func OperatorFromContext(ctx context.Context) *auth.Operator {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxOperator).(*auth.Operator); ok {
		return v
	}
	return nil
}

// OperatorCodeFromContext returns the operator code or "anonymous".
func OperatorCodeFromContext(ctx context.Context) string {
	if op := OperatorFromContext(ctx); op != nil {
		return op.Code
	}
	return "anonymous"
}

func StoreIDFromContext(ctx context.Context) (enums.StoreID, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(ctxStoreID).(enums.StoreID)
	return v, ok
}

// WithOperator injects the operator into the context.
func WithOperator(ctx context.Context, operator *auth.Operator) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOperator, operator)
}

// WithStoreID injects the store into the context for downstream handlers.
func WithStoreID(ctx context.Context, store enums.StoreID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStoreID, store)
}
