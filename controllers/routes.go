package controllers

import (
	"vanblog/services"

	"github.com/gin-gonic/gin"
)

// RegisterAll 注册所有管理接口
func RegisterAll(r *gin.Engine, server *services.Server) {
	NewAPIController(server).RegisterRoutes(r)
	NewWalineController(server).RegisterRoutes(r)
	NewSettingController(server).RegisterRoutes(r)
	NewBackupController(server).RegisterRoutes(r)
	NewInitController(server).RegisterRoutes(r)
}
