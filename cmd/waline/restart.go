package waline

import (
	"fmt"

	"github.com/spf13/cobra"
)

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "重启评论服务",
	Run: func(cmd *cobra.Command, args []string) {
		detail, err := control("restart")
		if err != nil {
			fmt.Printf("重启评论服务失败: %v\n", err)
			return
		}
		fmt.Printf("评论服务已重启 (PID: %d, 启动次数: %d)\n", detail.Pid, detail.StartCount)
	},
}

func init() {
	walineCmd.AddCommand(restartCmd)
}
