package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vanblog/cmd/root"
	"vanblog/controllers"
	"vanblog/internal/config"
	"vanblog/internal/logger"
	"vanblog/internal/middleware"
	"vanblog/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动keeper服务",
	Long:  "启动管理接口，并托管评论服务进程",
	Run: func(cmd *cobra.Command, args []string) {
		if err := startServer(context.Background()); err != nil {
			logger.Fatal(err)
		}
	},
}

// Version 由main在启动时设置
var Version = ""

/**
 * Run the keeper until SIGINT/SIGTERM
 * @param {context.Context} ctx - Parent context
 * @returns {error} Returns error if no listener can be created or the stores can't be opened
 * @description
 * - Listens on server.address and, where supported, on the unix socket used by the CLI
 * - Starts the comment service when the system is initialized
 * - On signal: stops accepting requests, then stops the comment service and closes stores
 */
func startServer(ctx context.Context) error {
	cfg := config.App()
	gin.SetMode(cfg.Server.Mode)

	svc, err := services.NewServer(cfg, Version)
	if err != nil {
		return err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.MetricsMiddleware())
	controllers.RegisterAll(router, svc)

	addrs := []ListenAddr{{Network: "tcp", Address: cfg.Server.Address}}
	if cfg.Server.Socket != "" && IsUnixSocketSupported() {
		addrs = append(addrs, ListenAddr{Network: "unix", Address: cfg.Server.Socket})
	}
	listeners, err := CreateListeners(addrs)
	if len(listeners) == 0 {
		svc.Shutdown()
		return fmt.Errorf("no listener available: %v", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{Handler: router}
	serveErr := make(chan error, len(listeners))
	for _, l := range listeners {
		logger.Infof("Listening on %s://%s", l.Addr().Network(), l.Addr().String())
		go func(l net.Listener) {
			if err := httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}(l)
	}

	svc.Start(ctx)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down, stopping waline...")
	case runErr = <-serveErr:
		logger.Errorf("Server error: %v", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("HTTP shutdown: %v", err)
	}
	svc.Shutdown()
	if cfg.Server.Socket != "" {
		os.Remove(cfg.Server.Socket)
	}
	logger.Info("Server stopped")
	return runErr
}

func init() {
	root.RootCmd.AddCommand(serverCmd)

	serverCmd.Example = `  vanblog server`
}
