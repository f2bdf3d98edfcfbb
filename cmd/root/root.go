package root

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "vanblog",
	Short: "VanBlog keeper",
	Long:  `vanblog托管评论服务进程，提供备份导入导出与系统初始化的管理接口`,
}
