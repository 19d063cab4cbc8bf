package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// recovery traps handler panics and logs them through zap, so one bad
// request can't take the server down.
func recovery(logger *zap.Logger, includeStack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			panicValue := recover()
			if panicValue == nil {
				return
			}
			ce := logger.Check(zap.ErrorLevel, "Recovered from handler panic")
			if ce == nil {
				return
			}

			fields := []zap.Field{zap.Any("panic", panicValue)}
			if includeStack && ce.Entry.Stack == "" {
				fields = append(fields, zap.Stack("stacktrace"))
			} else if !includeStack {
				ce.Entry.Stack = ""
			}
			ce.Write(fields...)
		}()
		c.Next()
	}
}
