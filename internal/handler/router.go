package handler

import (
	"allowance/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	h := NewHandler(db, rdb, cfg)

	api := r.Group("/api/v1")
	{
		parent := api.Group("/parent")
		{
			parent.POST("/register", CallerMiddleware(), h.RegisterParent)
			parent.GET("/status", h.ParentStatus)
			parent.GET("/children", CallerMiddleware(), h.ListChildren)
		}

		allowance := api.Group("/allowance")
		{
			allowance.GET("", h.GetAllowance)
			allowance.GET("/transactions", h.ListTransactions)
			allowance.GET("/transaction", h.GetTransaction)
			allowance.POST("/set", CallerMiddleware(), h.SetAllowance)
			allowance.POST("/spend", CallerMiddleware(), h.Spend)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
