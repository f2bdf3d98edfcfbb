package waline

import (
	"fmt"

	"vanblog/internal/config"
	"vanblog/internal/rpc"
	"vanblog/services"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "停止评论服务",
	Long:  "通过keeper停止评论服务；keeper不在运行时，按PID文件清理遗留的评论服务进程",
	Run: func(cmd *cobra.Command, args []string) {
		if err := stopWaline(); err != nil {
			fmt.Println(err)
		}
	},
}

/**
 * Stop the comment service
 * @returns {error} Returns error if neither the keeper nor the local fallback can stop it
 * @description
 * - Asks the running keeper first
 * - When the keeper is unreachable, reaps the process recorded in the pid file
 */
func stopWaline() error {
	client := rpc.NewHTTPClient(nil)
	defer client.Close()

	resp, err := client.Post("/api/admin/waline/stop", nil)
	if err == nil {
		if err := resp.Err(); err != nil {
			return fmt.Errorf("停止评论服务失败: %v", err)
		}
		fmt.Println("评论服务已停止")
		return nil
	}
	fmt.Printf("keeper不可用(%v)，按PID文件清理\n", err)

	cfg := config.App()
	manager := services.NewWalineManager(cfg.Waline, cfg.Database, nil)
	if err := manager.Stop(); err != nil {
		return fmt.Errorf("停止评论服务失败: %v", err)
	}
	fmt.Println("评论服务已停止")
	return nil
}

func init() {
	walineCmd.AddCommand(stopCmd)
}
