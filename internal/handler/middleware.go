package handler

import (
	"time"

	"allowance/pkg/logger"
	"allowance/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HeaderCaller 调用方身份请求头，由前置网关完成签名校验后写入
const HeaderCaller = "X-Caller-Principal"

const callerKey = "caller"

// LoggerMiddleware 访问日志
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if query := c.Request.URL.RawQuery; query != "" {
			path = path + "?" + query
		}

		c.Next()

		logger.L().Info("HTTP",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("caller", c.GetString(callerKey)),
		)
	}
}

// RecoveryMiddleware 防止 panic 导致服务崩溃
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.L().Error("PANIC", zap.Any("error", err), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(500, gin.H{
					"code":    500,
					"message": "服务器内部错误",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, "+HeaderCaller)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// CallerMiddleware 状态变更接口必须携带调用方身份
func CallerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetHeader(HeaderCaller)
		if caller == "" {
			response.Unauthorized(c, "缺少调用方身份 "+HeaderCaller)
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// Caller 取出 CallerMiddleware 写入的调用方身份
func Caller(c *gin.Context) string {
	return c.GetString(callerKey)
}
