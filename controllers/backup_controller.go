package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"vanblog/internal/models"
	"vanblog/services"

	"github.com/gin-gonic/gin"
)

// 备份文件上限
var maxBackupSize int64 = 256 << 20

var errBackupTooLarge = errors.New("backup too large")

type BackupController struct {
	server *services.Server
}

func NewBackupController(server *services.Server) *BackupController {
	return &BackupController{server: server}
}

func (b *BackupController) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/admin/backup")
	api.GET("/export", b.Export)
	api.POST("/import", b.Import)
}

// @Summary 导出全量备份
// @Tags Backup
// @Produce json
// @Success 200 {object} models.BackupSnapshot
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/backup/export [get]
func (b *BackupController) Export(c *gin.Context) {
	data, err := b.server.Backup().ExportJSON()
	if err != nil {
		respondError(c, "backup.export_failed", err)
		return
	}
	name := fmt.Sprintf("vanblog-backup-%s.json", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(200, "application/json; charset=utf-8", data)
}

// @Summary 导入全量备份
// @Description 支持multipart的file字段或直接提交JSON
// @Tags Backup
// @Accept json
// @Produce json
// @Success 200 {object} models.RestoreResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse "Demo site"
// @Failure 413 {object} models.ErrorResponse "Backup too large"
// @Failure 429 {object} models.ErrorResponse "Restore in progress"
// @Router /api/admin/backup/import [post]
func (b *BackupController) Import(c *gin.Context) {
	data, err := readBackup(c)
	if err != nil {
		rejectBackup(c, "backup.invalid", err)
		return
	}
	result, err := b.server.Backup().Import(c.Request.Context(), data)
	if err != nil {
		respondError(c, "backup.import_failed", err)
		return
	}
	c.JSON(200, result)
}

// readBackup 读取上传的备份文件，超过上限返回errBackupTooLarge
func readBackup(c *gin.Context) ([]byte, error) {
	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > maxBackupSize {
			return nil, fmt.Errorf("%w: %d bytes, limit %d", errBackupTooLarge, fh.Size, maxBackupSize)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return readLimited(f)
	}
	return readLimited(c.Request.Body)
}

// readLimited 多读一个字节用来判断是否超出上限，不做截断
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBackupSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBackupSize {
		return nil, fmt.Errorf("%w: limit %d bytes", errBackupTooLarge, maxBackupSize)
	}
	return data, nil
}

// rejectBackup 超出上限返回413，其它读取错误返回400
func rejectBackup(c *gin.Context, code string, err error) {
	if errors.Is(err, errBackupTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, &models.ErrorResponse{
			Code:  "backup.too_large",
			Error: err.Error(),
		})
		return
	}
	badRequest(c, code, err)
}
