package controllers

import (
	"vanblog/internal/models"
	"vanblog/services"

	"github.com/gin-gonic/gin"
)

type SettingController struct {
	server *services.Server
}

func NewSettingController(server *services.Server) *SettingController {
	return &SettingController{server: server}
}

func (s *SettingController) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/admin/setting")
	api.GET("/waline", s.GetWalineSetting)
	api.PUT("/waline", s.UpdateWalineSetting)
}

// @Summary 获取评论设置
// @Tags Setting
// @Produce json
// @Success 200 {object} models.WalineSetting
// @Router /api/admin/setting/waline [get]
func (s *SettingController) GetWalineSetting(c *gin.Context) {
	setting, err := s.server.Settings().GetWalineSetting()
	if err != nil {
		respondError(c, "setting.read_failed", err)
		return
	}
	if setting == nil {
		setting = models.WalineSetting{}
	}
	c.JSON(200, setting)
}

// @Summary 更新评论设置
// @Description 保存设置并重启评论服务，恢复进行中时返回429
// @Tags Setting
// @Accept json
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /api/admin/setting/waline [put]
func (s *SettingController) UpdateWalineSetting(c *gin.Context) {
	var setting models.WalineSetting
	if err := c.ShouldBindJSON(&setting); err != nil {
		badRequest(c, "setting.invalid", err)
		return
	}
	if err := s.server.UpdateWalineSetting(c.Request.Context(), setting); err != nil {
		respondError(c, "setting.update_failed", err)
		return
	}
	c.JSON(200, &models.MessageResponse{
		Status:  "success",
		Message: "Waline setting updated",
	})
}
