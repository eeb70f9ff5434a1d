package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinLogger returns a gin middleware that writes one access log entry per
// request through the zap logger.
func GinLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path
		query := ctx.Request.URL.RawQuery

		ctx.Next()

		fields := []zap.Field{
			zap.Int("status", ctx.Writer.Status()),
			zap.String("method", ctx.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", ctx.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if rid := ctx.GetString(ContextRequestIDKey); rid != "" {
			fields = append(fields, zap.String("request_id", rid))
		}
		if len(ctx.Errors) > 0 {
			fields = append(fields, zap.String("errors", ctx.Errors.ByType(gin.ErrorTypePrivate).String()))
		}
		logger.Info(path, fields...)
	}
}

// GinRecovery returns a gin middleware that recovers from panics, logs the
// stack through zap and answers with a 500 envelope.
func GinRecovery(logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", ctx.Request.URL.Path),
					zap.Stack("stack"),
				)
				Error(ctx, 500, "internal server error")
				ctx.Abort()
			}
		}()
		ctx.Next()
	}
}

// ContextRequestIDKey is where the request id middleware stores the id.
const ContextRequestIDKey = "request_id"
