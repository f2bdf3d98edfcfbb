package controllers

import (
	"fmt"

	"vanblog/internal/models"
	"vanblog/services"

	"github.com/gin-gonic/gin"
)

type WalineController struct {
	server *services.Server
}

func NewWalineController(server *services.Server) *WalineController {
	return &WalineController{server: server}
}

/**
 * Register comment service routes
 * @param {*gin.Engine} r - Gin router instance
 */
func (w *WalineController) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/admin/waline")
	api.GET("", w.GetStatus)
	api.GET("/env", w.GetEnv)
	api.POST("/:action", w.Control)
}

// GetStatus returns the comment service process detail
//
//	@Summary		Comment service status
//	@Tags			Waline
//	@Produce		json
//	@Success		200	{object}	models.ProcessDetail
//	@Router			/api/admin/waline [get]
func (w *WalineController) GetStatus(c *gin.Context) {
	c.JSON(200, w.server.Waline().GetDetail())
}

// Control starts, stops or restarts the comment service
//
//	@Summary		Control comment service
//	@Tags			Waline
//	@Produce		json
//	@Param			action	path		string					true	"start/stop/restart"
//	@Success		200		{object}	models.ProcessDetail
//	@Failure		404		{object}	models.ErrorResponse
//	@Failure		429		{object}	models.ErrorResponse	"Restore in progress"
//	@Failure		500		{object}	models.ErrorResponse
//	@Router			/api/admin/waline/{action} [post]
func (w *WalineController) Control(c *gin.Context) {
	action := c.Param("action")
	switch action {
	case "start", "stop", "restart":
	default:
		c.JSON(404, &models.ErrorResponse{
			Code:  "waline.action",
			Error: fmt.Sprintf("action [%s] isn't supported", action),
		})
		return
	}
	if err := w.server.ControlWaline(c.Request.Context(), action); err != nil {
		respondError(c, "waline."+action+"_failed", err)
		return
	}
	c.JSON(200, w.server.Waline().GetDetail())
}

// GetEnv returns the masked environment the comment service would start with
//
//	@Summary		Comment service environment
//	@Tags			Waline
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		500	{object}	models.ErrorResponse
//	@Router			/api/admin/waline/env [get]
func (w *WalineController) GetEnv(c *gin.Context) {
	env, err := w.server.Waline().LoadEnv()
	if err != nil {
		respondError(c, "waline.env_failed", err)
		return
	}
	c.JSON(200, services.MaskEnv(env))
}
