package backup

import (
	"fmt"
	"os"
	"time"

	"vanblog/internal/rpc"

	"github.com/spf13/cobra"
)

var output string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "导出全量备份",
	Run: func(cmd *cobra.Command, args []string) {
		if err := exportBackup(output); err != nil {
			fmt.Println(err)
		}
	},
}

/**
 * Export a backup to a file
 * @param {string} path - Output file, defaults to vanblog-backup-<time>.json
 */
func exportBackup(path string) error {
	cfg := rpc.DefaultHTTPConfig()
	cfg.Timeout = 5 * time.Minute
	client := rpc.NewHTTPClient(cfg)
	defer client.Close()

	resp, err := client.Get("/api/admin/backup/export", nil)
	if err != nil {
		return fmt.Errorf("连接keeper失败: %v", err)
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("导出失败: %v", err)
	}
	if path == "" {
		path = fmt.Sprintf("vanblog-backup-%s.json", time.Now().Format("20060102150405"))
	}
	if err := os.WriteFile(path, resp.Body, 0600); err != nil {
		return fmt.Errorf("写入备份文件失败: %v", err)
	}
	fmt.Printf("备份已导出到 %s (%d 字节)\n", path, len(resp.Body))
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "输出文件")
	backupCmd.AddCommand(exportCmd)
}
