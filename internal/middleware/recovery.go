package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
	"github.com/noah-isme/gestao-escolar-api/pkg/response"
)

// Recovery turns panics into a 500 {detail} response and logs them.
// http.ErrAbortHandler is re-raised so net/http drops the connection.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		if recovered == http.ErrAbortHandler {
			logger.Warn("response aborted",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Strings("errors", c.Errors.Errors()),
			)
			panic(http.ErrAbortHandler)
		}
		logger.Error("panic recovered",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)
		response.Abort(c, appErrors.Wrap(fmt.Errorf("panic: %v", recovered), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message))
	})
}
