package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"vanblog/internal/logger"
	"vanblog/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const (
	initRestartReason        = "system initialized"
	initRestoreRestartReason = "system initialized from backup"
)

/**
 * InitService 系统初始化
 * @description
 * - 初始化与从备份初始化互斥，第二个调用方得到ErrBusy
 * - 已经存在管理员时返回ErrAlreadyInitialized
 */
type InitService struct {
	stores       *BlogStores
	restorer     *Restorer
	waline       walineRestarter
	initializing atomic.Bool
	log          *logger.Logger
}

func NewInitService(stores *BlogStores, restorer *Restorer, waline walineRestarter) *InitService {
	return &InitService{
		stores:   stores,
		restorer: restorer,
		waline:   waline,
		log:      logger.Named("init"),
	}
}

func (s *InitService) Initialized() (bool, error) {
	return s.stores.User.Exists()
}

/**
 * Initialize the system with an admin user and site info
 * @param {context.Context} ctx - Passed to the comment service restart
 * @param {models.InitRequest} req - Admin credentials and site info
 * @description
 * - Password is stored as a bcrypt hash
 * - The comment service is (re)started afterwards, failure is only logged
 * - Holds the restore guard, ErrBusy while a restore or comment service control is running
 */
func (s *InitService) Init(ctx context.Context, req models.InitRequest) error {
	if !s.initializing.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.initializing.Store(false)

	// 与恢复、评论服务控制共用一个标志，同一时间只有一个调用方操作评论服务
	return s.restorer.Exclusive(func() error {
		return s.init(ctx, req)
	})
}

func (s *InitService) init(ctx context.Context, req models.InitRequest) error {
	done, err := s.Initialized()
	if err != nil {
		return err
	}
	if done {
		return ErrAlreadyInitialized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.User.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	nickname := req.User.Nickname
	if nickname == "" {
		nickname = req.User.Username
	}
	if err := s.stores.User.CreateAdmin(req.User.Username, string(hash), nickname, ""); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	meta := models.Document{
		"siteInfo": models.Document{
			"siteName": req.SiteInfo.SiteName,
			"baseUrl":  req.SiteInfo.BaseURL,
			"author":   req.SiteInfo.Author,
			"siteDesc": req.SiteInfo.SiteDesc,
		},
		"links":   []any{},
		"socials": []any{},
		"menus":   []any{},
		"viewer":  0,
		"visited": 0,
	}
	if err := s.stores.Meta.Create(meta); err != nil {
		return fmt.Errorf("create meta: %w", err)
	}
	s.log.Infof("System initialized, admin: %s", req.User.Username)

	if err := s.waline.Restart(ctx, initRestartReason); err != nil {
		s.log.Warnf("Start waline after init: %v", err)
	}
	return nil
}

/**
 * Initialize the system from a backup file
 * @param {context.Context} ctx - Restore context
 * @param {[]byte} data - Backup file content
 * @returns {*models.RestoreResult} Restore result
 */
func (s *InitService) InitRestore(ctx context.Context, data []byte) (*models.RestoreResult, error) {
	if !s.initializing.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.initializing.Store(false)

	done, err := s.Initialized()
	if err != nil {
		return nil, err
	}
	if done {
		return nil, ErrAlreadyInitialized
	}
	snap, err := ParseSnapshot(data)
	if err != nil {
		return nil, err
	}
	return s.restorer.Restore(ctx, snap, models.RestoreModeInit, initRestoreRestartReason)
}
