package waline

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"vanblog/internal/rpc"

	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "查看评论服务的环境变量",
	Long:  "按当前设置计算评论服务的环境变量，口令类变量以******显示",
	Run: func(cmd *cobra.Command, args []string) {
		if err := showEnv(); err != nil {
			fmt.Println(err)
		}
	},
}

func showEnv() error {
	client := rpc.NewHTTPClient(nil)
	defer client.Close()

	resp, err := client.Get("/api/admin/waline/env", nil)
	if err != nil {
		return fmt.Errorf("连接keeper失败: %v", err)
	}
	if err := resp.Err(); err != nil {
		return err
	}
	var env map[string]string
	if err := resp.Decode(&env); err != nil {
		return fmt.Errorf("解析响应失败: %v", err)
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "变量\t值")
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%s\n", k, env[k])
	}
	return w.Flush()
}

func init() {
	walineCmd.AddCommand(envCmd)
}
