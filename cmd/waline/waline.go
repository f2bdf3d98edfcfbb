package waline

import (
	"fmt"

	"vanblog/cmd/root"
	"vanblog/internal/models"
	"vanblog/internal/rpc"

	"github.com/spf13/cobra"
)

var walineCmd = &cobra.Command{
	Use:   "waline",
	Short: "评论服务操作(start/stop/restart/status/env)",
	Long:  `通过运行中的keeper控制评论服务进程`,
}

const walineExample = `  # restart the comment service
  vanblog waline restart
  # show environment handed to the comment service
  vanblog waline env`

/**
 * Send a control request for the comment service
 * @param {string} action - start/stop/restart
 * @returns {*models.ProcessDetail} Process detail after the action
 */
func control(action string) (*models.ProcessDetail, error) {
	client := rpc.NewHTTPClient(nil)
	defer client.Close()

	resp, err := client.Post("/api/admin/waline/"+action, nil)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	var detail models.ProcessDetail
	if err := resp.Decode(&detail); err != nil {
		return nil, fmt.Errorf("解析响应失败: %v", err)
	}
	return &detail, nil
}

func init() {
	root.RootCmd.AddCommand(walineCmd)

	walineCmd.Example = walineExample
}
