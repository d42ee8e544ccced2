package utils

import (
	"context"

	"github.com/google/uuid"
	"github.com/mmdatafocus/studio_backend/appctx"
)

var (
	ContextKeyUserId        = appctx.ContextKeyUserId
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyTool          = appctx.ContextKeyTool
)

func GetUserIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserId)
}

func SetUserIdInContext(ctx context.Context, userId string) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetToolFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyTool)
}

func SetToolInContext(ctx context.Context, tool string) context.Context {
	return appctx.Set(ctx, ContextKeyTool, tool)
}

// CorrelationIdFromContextOrNew returns the request correlation id, minting one when absent.
func CorrelationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
