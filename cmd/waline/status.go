package waline

import (
	"fmt"
	"strings"

	"vanblog/internal/models"
	"vanblog/internal/rpc"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "查看评论服务状态",
	Run: func(cmd *cobra.Command, args []string) {
		if err := showStatus(); err != nil {
			fmt.Println(err)
		}
	},
}

func showStatus() error {
	client := rpc.NewHTTPClient(nil)
	defer client.Close()

	resp, err := client.Get("/api/admin/waline", nil)
	if err != nil {
		return fmt.Errorf("连接keeper失败: %v", err)
	}
	if err := resp.Err(); err != nil {
		return err
	}
	var detail models.ProcessDetail
	if err := resp.Decode(&detail); err != nil {
		return fmt.Errorf("解析响应失败: %v", err)
	}

	fmt.Printf("=== 评论服务 '%s' ===\n", detail.Title)
	fmt.Printf("状态: %s\n", detail.Status)
	if detail.Pid > 0 {
		fmt.Printf("PID: %d\n", detail.Pid)
		fmt.Printf("启动时间: %s\n", detail.StartTime.Format("2006-01-02 15:04:05"))
	}
	if detail.Command != "" {
		fmt.Printf("启动命令: %s %s\n", detail.Command, strings.Join(detail.Args, " "))
		fmt.Printf("工作目录: %s\n", detail.WorkDir)
	}
	fmt.Printf("PID文件: %s\n", detail.PidFile)
	fmt.Printf("启动次数: %d\n", detail.StartCount)
	if !detail.LastExitTime.IsZero() {
		fmt.Printf("最后退出: %s (%s)\n", detail.LastExitTime.Format("2006-01-02 15:04:05"), detail.LastExitReason)
	}
	return nil
}

func init() {
	walineCmd.AddCommand(statusCmd)
}
