package waline

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "启动评论服务",
	Run: func(cmd *cobra.Command, args []string) {
		detail, err := control("start")
		if err != nil {
			fmt.Printf("启动评论服务失败: %v\n", err)
			return
		}
		fmt.Printf("评论服务已启动 (PID: %d)\n", detail.Pid)
	},
}

func init() {
	walineCmd.AddCommand(startCmd)
}
