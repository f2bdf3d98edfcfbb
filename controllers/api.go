package controllers

import (
	"vanblog/internal/config"
	"vanblog/internal/models"
	"vanblog/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIController struct {
	server *services.Server
}

/**
 * Create new API controller instance
 * @param {*services.Server} server - Keeper server
 * @returns {*APIController} New API controller instance
 */
func NewAPIController(server *services.Server) *APIController {
	return &APIController{
		server: server,
	}
}

/**
 * Register system routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 * @description
 * - /healthz 就绪探针
 * - /metrics Prometheus指标
 * - /api/admin/reload 重新加载配置
 */
func (a *APIController) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", a.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/api/admin/reload", a.ReloadConfig)
}

// @Summary 重新加载配置
// @Description 重新加载应用配置文件，评论服务下次启动时生效
// @Tags Config
// @Success 200 {object} models.MessageResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/reload [post]
func (a *APIController) ReloadConfig(c *gin.Context) {
	if err := config.ReloadConfig(); err != nil {
		c.JSON(500, &models.ErrorResponse{
			Code:  "config.reload_failed",
			Error: "Failed to reload configuration: " + err.Error(),
		})
		return
	}
	c.JSON(200, &models.MessageResponse{
		Status:  "success",
		Message: "Configuration reloaded successfully",
	})
}

// @Summary 业务就绪探针
// @Description 返回版本、启动时间、请求统计和评论服务状态
// @Tags System
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func (a *APIController) Healthz(c *gin.Context) {
	c.JSON(200, a.server.GetHealthz())
}
