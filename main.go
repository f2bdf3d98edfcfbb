package main

import (
	"os"

	"vanblog/cmd"
	"vanblog/cmd/root"
	"vanblog/cmd/server"
	"vanblog/internal/config"
	"vanblog/internal/logger"
)

func main() {
	// 服务器模式日志同时输出到控制台
	isServerMode := len(os.Args) > 1 && os.Args[1] == "server"
	cfg := config.App()
	logger.InitLoggerWithMode(&cfg.Log, isServerMode)
	server.Version = cmd.VersionString()

	if err := root.RootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
	os.Exit(0)
}
