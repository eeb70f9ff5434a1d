package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/goblogdev/goblog/utils"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a uuid to every request so access logs and client
// error reports can be correlated. An id supplied by a trusted proxy is
// kept.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rid := ctx.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx.Set(utils.ContextRequestIDKey, rid)
		ctx.Writer.Header().Set(requestIDHeader, rid)
		ctx.Next()
	}
}
