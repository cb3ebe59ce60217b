package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func (f *fleetHandler) loggingError(c *gin.Context, err error, errDescription string, logLevel zapcore.Level) {
	f.logger.Log(logLevel, errDescription,
		zap.Error(err),
		zap.String("http_method", c.Request.Method),
		zap.String("http_path", c.Request.URL.Path))
}
