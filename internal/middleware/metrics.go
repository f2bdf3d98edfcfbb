package middleware

import (
	"time"

	"vanblog/services"

	"github.com/gin-gonic/gin"
)

/**
 * HTTP请求统计中间件
 * @description
 * - 按路由模板统计请求数量与处理时间
 * - 状态码>=400记为错误请求
 * - 为/healthz提供请求数据
 */
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// 未匹配路由的请求统一归到unknown
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		services.IncrementRequestCount(path)
		services.RecordRequestDuration(path, time.Since(start).Seconds())
		if c.Writer.Status() >= 400 {
			services.IncrementErrorCount(path)
		}
	}
}
