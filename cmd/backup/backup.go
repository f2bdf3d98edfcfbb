package backup

import (
	"vanblog/cmd/root"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "备份操作(export/import)",
	Long:  `通过运行中的keeper导出或导入全量备份`,
}

const backupExample = `  # export to a file
  vanblog backup export -o backup.json
  # import a file
  vanblog backup import backup.json`

func init() {
	root.RootCmd.AddCommand(backupCmd)

	backupCmd.Example = backupExample
}
