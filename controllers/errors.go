package controllers

import (
	"errors"
	"net/http"

	"vanblog/internal/models"
	"vanblog/services"

	"github.com/gin-gonic/gin"
)

// respondError 按错误类型选择状态码
func respondError(c *gin.Context, code string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrBusy):
		status = http.StatusTooManyRequests
		code = "system.busy"
	case errors.Is(err, services.ErrDemoMode):
		status = http.StatusForbidden
		code = "system.demo"
	case errors.Is(err, services.ErrInvalidBackup):
		status = http.StatusBadRequest
		code = "backup.invalid"
	case errors.Is(err, services.ErrAlreadyInitialized):
		code = "system.initialized"
	}
	c.JSON(status, &models.ErrorResponse{
		Code:  code,
		Error: err.Error(),
	})
}

func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, &models.ErrorResponse{
		Code:  code,
		Error: err.Error(),
	})
}
