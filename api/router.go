package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fyerfyer/rime-zhwiki/api/handler"
	"github.com/fyerfyer/rime-zhwiki/api/middleware"
)

// SetupRouter 设置API路由
// 服务只读，不触发同步或打包
func SetupRouter(runHandler *handler.RunHandler, releaseHandler *handler.ReleaseHandler) *gin.Engine {
	router := gin.New()

	router.Use(middleware.SetTraceID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(Cors())

	api := router.Group("/api")
	{
		// 运行记录 - GET /api/runs, GET /api/runs/:id
		runGroup := api.Group("/runs")
		{
			runGroup.GET("", runHandler.ListRuns)
			runGroup.GET("/:id", runHandler.GetRun)
		}

		// 最近一次运行 - GET /api/status
		api.GET("/status", runHandler.LatestRun)

		// 版本与发布 - GET /api/version, GET /api/releases, GET /api/download/*name
		api.GET("/version", releaseHandler.GetVersion)
		api.GET("/releases", releaseHandler.ListReleases)
		api.GET("/download/*name", releaseHandler.Download)

		// 健康检查API
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	return router
}

// Cors 跨域资源共享中间件
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Encoding, Cache-Control, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
