package cmd

import (
	"fmt"

	"vanblog/cmd/root"
	"vanblog/internal/models"
	"vanblog/internal/rpc"

	"github.com/spf13/cobra"
)

// 构建时通过-ldflags -X注入
var (
	SoftwareVer   = ""
	BuildTime     = ""
	BuildTag      = ""
	BuildCommitId = ""
)

const devVersion = "dev"

var optKeeper bool

// VersionString 未注入版本号的本地构建显示为dev，/healthz返回同一个值
func VersionString() string {
	if SoftwareVer == "" {
		return devVersion
	}
	return SoftwareVer
}

func printVersions() {
	fmt.Printf("vanblog %s\n", VersionString())
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Build Tag: %s\n", BuildTag)
	fmt.Printf("Build Commit ID: %s\n", BuildCommitId)
}

/**
 * Print the version of the running keeper
 * @description
 * - Reads /healthz over the keeper socket
 * - Warns when the keeper was built from another version than this binary
 */
func printKeeperVersion() error {
	client := rpc.NewHTTPClient(nil)
	defer client.Close()

	resp, err := client.Get("/healthz", nil)
	if err != nil {
		return fmt.Errorf("keeper not reachable: %v", err)
	}
	if err := resp.Err(); err != nil {
		return err
	}
	var health models.HealthResponse
	if err := resp.Decode(&health); err != nil {
		return fmt.Errorf("decode health: %v", err)
	}
	fmt.Printf("Keeper: %s, up %s, waline %s\n", health.Version, health.Uptime, health.Metrics.WalineStatus)
	if health.Version != VersionString() {
		fmt.Printf("Warning: keeper runs %s, this binary is %s, restart the keeper to upgrade\n",
			health.Version, VersionString())
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Shows the build version, time and commit, and with --keeper the version of the running keeper`,

	Run: func(cmd *cobra.Command, args []string) {
		printVersions()
		if !optKeeper {
			return
		}
		if err := printKeeperVersion(); err != nil {
			fmt.Println(err)
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&optKeeper, "keeper", false, "Also query the running keeper")
	root.RootCmd.AddCommand(versionCmd)

	versionCmd.Example = `  vanblog version
  vanblog version --keeper`
}
