package backup

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	"vanblog/internal/models"
	"vanblog/internal/rpc"

	"github.com/spf13/cobra"
)

var initMode bool

var importCmd = &cobra.Command{
	Use:   "import [备份文件]",
	Short: "导入全量备份",
	Long:  "导入全量备份；--init 用于尚未初始化的系统，会从备份创建管理员",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := importBackup(args[0], initMode); err != nil {
			fmt.Println(err)
		}
	},
}

/**
 * Import a backup file through the keeper
 * @param {string} path - Backup file
 * @param {bool} initRestore - Use the init restore endpoint
 */
func importBackup(path string, initRestore bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取备份文件失败: %v", err)
	}

	cfg := rpc.DefaultHTTPConfig()
	cfg.Timeout = 10 * time.Minute
	client := rpc.NewHTTPClient(cfg)
	defer client.Close()

	endpoint := "/api/admin/backup/import"
	if initRestore {
		endpoint = "/api/admin/init/restore"
	}
	resp, err := client.PostRaw(endpoint, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("连接keeper失败: %v", err)
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("导入失败: %v", err)
	}

	var result models.RestoreResult
	if err := resp.Decode(&result); err != nil {
		return fmt.Errorf("解析响应失败: %v", err)
	}
	printResult(&result)
	return nil
}

func printResult(result *models.RestoreResult) {
	fmt.Printf("导入完成 (模式: %s, 耗时: %s, 评论服务重启: %d 次)\n", result.Mode, result.Duration, result.Restarts)
	names := make([]string, 0, len(result.Imported))
	for name := range result.Imported {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %d\n", name, result.Imported[name])
	}
	for _, w := range result.Warnings {
		fmt.Printf("警告: %s\n", w)
	}
}

func init() {
	importCmd.Flags().BoolVar(&initMode, "init", false, "从备份初始化系统")
	backupCmd.AddCommand(importCmd)
}
