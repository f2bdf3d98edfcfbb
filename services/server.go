package services

import (
	"context"
	"fmt"
	"time"

	"vanblog/internal/config"
	"vanblog/internal/logger"
	"vanblog/internal/models"
	"vanblog/internal/store"
)

/**
 * Server 组装各个数据域、评论服务监管者与备份恢复
 */
type Server struct {
	cfg       config.AppConfig
	blogDB    store.DocumentStore
	walineDB  store.DocumentStore
	stores    *BlogStores
	waline    *WalineManager
	comments  *CommentStore
	restorer  *Restorer
	backup    *BackupService
	init      *InitService
	startTime time.Time
	version   string
}

/**
 * Create server with stores opened from configuration
 * @param {config.AppConfig} cfg - Application configuration
 * @param {string} version - Keeper version shown by /healthz
 * @returns {*Server} Server instance
 */
func NewServer(cfg config.AppConfig, version string) (*Server, error) {
	blogDB, err := store.Open(cfg.Database, cfg.Database.Name)
	if err != nil {
		return nil, fmt.Errorf("open blog database: %w", err)
	}
	walineDB, err := store.Open(cfg.Database, cfg.Database.WalineDB)
	if err != nil {
		blogDB.Close()
		return nil, fmt.Errorf("open waline database: %w", err)
	}
	return NewServerWithStores(cfg, version, blogDB, walineDB), nil
}

// NewServerWithStores 使用已经打开的文档库
func NewServerWithStores(cfg config.AppConfig, version string, blogDB, walineDB store.DocumentStore) *Server {
	s := &Server{
		cfg:       cfg,
		blogDB:    blogDB,
		walineDB:  walineDB,
		startTime: time.Now(),
		version:   version,
	}
	s.stores = NewBlogStores(blogDB)
	s.comments = NewCommentStore(walineDB)
	s.waline = NewWalineManager(cfg.Waline, cfg.Database, &walineSource{s.stores})
	s.restorer = NewRestorer(RestoreDeps{
		Articles:   s.stores.Articles,
		Drafts:     s.stores.Drafts,
		Categories: s.stores.Categories,
		Static:     s.stores.Static,
		Visit:      s.stores.Visit,
		Viewer:     s.stores.Viewer,
		User:       s.stores.User,
		Meta:       s.stores.Meta,
		Setting:    s.stores.Setting,
		Comments:   s.comments,
		Waline:     s.waline,
	})
	s.backup = NewBackupService(s.stores, s.comments, s.restorer, cfg.Demo)
	s.init = NewInitService(s.stores, s.restorer, s.waline)
	return s
}

// walineSource 评论服务环境变量的数据来源
type walineSource struct {
	stores *BlogStores
}

func (w *walineSource) GetSiteInfo() (*models.SiteInfo, error) {
	return w.stores.Meta.GetSiteInfo()
}

func (w *walineSource) GetWalineSetting() (models.WalineSetting, error) {
	return w.stores.Setting.GetWalineSetting()
}

func (s *Server) Waline() *WalineManager   { return s.waline }
func (s *Server) Backup() *BackupService   { return s.backup }
func (s *Server) Init() *InitService       { return s.init }
func (s *Server) Restorer() *Restorer      { return s.restorer }
func (s *Server) Settings() *SettingStore  { return s.stores.Setting }
func (s *Server) Config() config.AppConfig { return s.cfg }

/**
 * Start background parts of the server
 * @description
 * - The comment service is started when autostart is on and the system is initialized
 * - Failure to start it doesn't stop the server
 */
func (s *Server) Start(ctx context.Context) {
	if !s.cfg.Waline.Autostart {
		logger.Info("Waline autostart disabled")
		return
	}
	done, err := s.init.Initialized()
	if err != nil {
		logger.Warnf("Check initialization: %v", err)
		return
	}
	if !done {
		logger.Info("System not initialized, waline will start after init")
		return
	}
	if err := s.waline.Start(ctx); err != nil {
		logger.Errorf("Start waline: %v", err)
	}
}

// Shutdown 停止评论服务并关闭文档库
func (s *Server) Shutdown() {
	if err := s.waline.Stop(); err != nil {
		logger.Errorf("Stop waline: %v", err)
	}
	if err := s.walineDB.Close(); err != nil {
		logger.Warnf("Close waline database: %v", err)
	}
	if err := s.blogDB.Close(); err != nil {
		logger.Warnf("Close blog database: %v", err)
	}
}

/**
 * Save comment settings and restart the comment service
 * @param {context.Context} ctx - Restart context
 * @param {models.WalineSetting} setting - New settings
 * @returns {error} ErrBusy during a restore, ErrDemoMode on the demo site
 */
func (s *Server) UpdateWalineSetting(ctx context.Context, setting models.WalineSetting) error {
	if s.cfg.Demo {
		return ErrDemoMode
	}
	return s.restorer.Exclusive(func() error {
		if err := s.stores.Setting.SaveWalineSetting(setting); err != nil {
			return err
		}
		return s.waline.Restart(ctx, "waline settings updated")
	})
}

/**
 * Control the comment service
 * @param {context.Context} ctx - Start context
 * @param {string} action - start/stop/restart
 * @returns {error} ErrBusy during a restore
 */
func (s *Server) ControlWaline(ctx context.Context, action string) error {
	return s.restorer.Exclusive(func() error {
		switch action {
		case "start":
			return s.waline.Start(ctx)
		case "stop":
			return s.waline.Stop()
		case "restart":
			return s.waline.Restart(ctx, "requested by admin")
		default:
			return fmt.Errorf("unknown action '%s'", action)
		}
	})
}

/**
 * Get health response
 * @returns {models.HealthResponse} Version, uptime, request counters and comment service state
 */
func (s *Server) GetHealthz() models.HealthResponse {
	detail := s.waline.GetDetail()
	return models.HealthResponse{
		Version:   s.version,
		StartTime: s.startTime.Format(time.RFC3339),
		Status:    "UP",
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Metrics: models.Metrics{
			TotalRequests:  GetTotalRequestCount(),
			ErrorRequests:  GetTotalErrorCount(),
			WalineStatus:   detail.Status,
			WalineStarts:   detail.StartCount,
			RestoreRunning: s.restorer.Running(),
		},
	}
}
