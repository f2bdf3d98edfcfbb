package controllers

import (
	"errors"

	"vanblog/internal/models"
	"vanblog/services"

	"github.com/gin-gonic/gin"
)

type InitController struct {
	server *services.Server
}

func NewInitController(server *services.Server) *InitController {
	return &InitController{server: server}
}

func (i *InitController) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/admin/init")
	api.GET("", i.Status)
	api.POST("", i.Init)
	api.POST("/restore", i.Restore)
}

// @Summary 查询初始化状态
// @Tags Init
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /api/admin/init [get]
func (i *InitController) Status(c *gin.Context) {
	done, err := i.server.Init().Initialized()
	if err != nil {
		respondError(c, "init.status_failed", err)
		return
	}
	c.JSON(200, gin.H{"initialized": done})
}

// @Summary 初始化系统
// @Description 创建管理员与站点信息，然后启动评论服务
// @Tags Init
// @Accept json
// @Produce json
// @Param body body models.InitRequest true "Admin and site info"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse "Initialization in progress"
// @Failure 500 {object} models.ErrorResponse "Already initialized"
// @Router /api/admin/init [post]
func (i *InitController) Init(c *gin.Context) {
	var req models.InitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "init.invalid", err)
		return
	}
	if req.User.Username == "" || req.User.Password == "" {
		badRequest(c, "init.invalid", errors.New("username and password are required"))
		return
	}
	if err := i.server.Init().Init(c.Request.Context(), req); err != nil {
		respondError(c, "init.failed", err)
		return
	}
	c.JSON(200, &models.MessageResponse{
		Status:  "success",
		Message: "System initialized",
	})
}

// @Summary 从备份初始化系统
// @Tags Init
// @Accept json
// @Produce json
// @Success 200 {object} models.RestoreResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/init/restore [post]
func (i *InitController) Restore(c *gin.Context) {
	data, err := readBackup(c)
	if err != nil {
		rejectBackup(c, "init.invalid", err)
		return
	}
	result, err := i.server.Init().InitRestore(c.Request.Context(), data)
	if err != nil {
		respondError(c, "init.restore_failed", err)
		return
	}
	c.JSON(200, result)
}
