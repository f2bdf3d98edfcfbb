package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"vanblog/internal/logger"
	"vanblog/internal/models"
	"vanblog/internal/store"

	"github.com/goccy/go-json"
)

const importRestartReason = "backup imported"

/**
 * BackupService 全量备份的导出与导入
 * @description
 * - 导出把所有数据域聚合成一个带缩进的JSON文档
 * - 导入解析失败直接返回错误，缺失的数据域视为不变
 */
type BackupService struct {
	stores   *BlogStores
	comments *CommentStore
	restorer *Restorer
	demo     bool
	log      *logger.Logger
}

/**
 * BlogStores 博客各数据域
 */
type BlogStores struct {
	Articles   *ListStore
	Drafts     *ListStore
	Categories *ListStore
	Static     *ListStore
	Visit      *ListStore
	Viewer     *ListStore
	Meta       *MetaStore
	User       *UserStore
	Setting    *SettingStore
}

// NewBlogStores 各集合导入时用于匹配的字段，visit没有稳定键，整体替换
func NewBlogStores(db store.DocumentStore) *BlogStores {
	return &BlogStores{
		Articles:   NewListStore(db, CollArticle, "id"),
		Drafts:     NewListStore(db, CollDraft, "id"),
		Categories: NewListStore(db, CollCategory, "name"),
		Static:     NewListStore(db, CollStatic, "sign"),
		Visit:      NewListStore(db, CollVisit, ""),
		Viewer:     NewListStore(db, CollViewer, "date"),
		Meta:       NewMetaStore(db),
		User:       NewUserStore(db),
		Setting:    NewSettingStore(db),
	}
}

func NewBackupService(stores *BlogStores, comments *CommentStore, restorer *Restorer, demo bool) *BackupService {
	return &BackupService{
		stores:   stores,
		comments: comments,
		restorer: restorer,
		demo:     demo,
		log:      logger.Named("backup"),
	}
}

/**
 * Export every data domain
 * @returns {*models.BackupSnapshot} Snapshot, meta carries the menus of the menu setting
 */
func (s *BackupService) Export() (*models.BackupSnapshot, error) {
	st := s.stores
	snap := &models.BackupSnapshot{}
	var err error

	lists := []struct {
		name   string
		source *ListStore
		target *[]models.Document
	}{
		{"articles", st.Articles, &snap.Articles},
		{"drafts", st.Drafts, &snap.Drafts},
		{"categories", st.Categories, &snap.Categories},
		{"static", st.Static, &snap.Static},
		{"visit", st.Visit, &snap.Visit},
		{"viewer", st.Viewer, &snap.Viewer},
	}
	for _, l := range lists {
		if *l.target, err = l.source.All(); err != nil {
			return nil, fmt.Errorf("export %s: %w", l.name, err)
		}
	}
	snap.Tags = collectTags(snap.Articles)

	if snap.Meta, err = optional(st.Meta.Get()); err != nil {
		return nil, fmt.Errorf("export meta: %w", err)
	}
	if snap.User, err = optional(st.User.Get()); err != nil {
		return nil, fmt.Errorf("export user: %w", err)
	}

	setting := &models.SettingSnapshot{}
	if setting.Static, err = st.Setting.Get(SettingStatic); err != nil {
		return nil, fmt.Errorf("export static setting: %w", err)
	}
	if setting.Layout, err = st.Setting.Get(SettingLayout); err != nil {
		return nil, fmt.Errorf("export layout setting: %w", err)
	}
	if setting.Waline, err = st.Setting.GetWalineSetting(); err != nil {
		return nil, fmt.Errorf("export waline setting: %w", err)
	}
	menu, err := st.Setting.Get(SettingMenu)
	if err != nil {
		return nil, fmt.Errorf("export menu setting: %w", err)
	}
	if snap.Meta != nil && menu != nil {
		snap.Meta = cloneDoc(snap.Meta)
		snap.Meta["menus"] = menu["data"]
	}
	snap.Setting = setting

	comments, err := s.comments.ExportComments()
	if err != nil {
		return nil, fmt.Errorf("export comments: %w", err)
	}
	snap.Waline = &models.WalineSnapshot{Comments: comments}
	return snap, nil
}

func optional(doc models.Document, err error) (models.Document, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return doc, err
}

// ExportJSON 导出为带缩进的JSON
func (s *BackupService) ExportJSON() ([]byte, error) {
	snap, err := s.Export()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(snap, "", "  ")
}

/**
 * Parse a backup file
 * @param {[]byte} data - JSON document
 * @returns {*models.BackupSnapshot} Parsed snapshot
 * @returns {error} Returns error for malformed JSON or a non-object top level
 */
func ParseSnapshot(data []byte) (*models.BackupSnapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: must be a JSON object", ErrInvalidBackup)
	}
	var snap models.BackupSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return &snap, nil
}

/**
 * Import a backup file into a running system
 * @param {context.Context} ctx - Restore context
 * @param {[]byte} data - Backup file content
 * @returns {*models.RestoreResult} Restore result
 */
func (s *BackupService) Import(ctx context.Context, data []byte) (*models.RestoreResult, error) {
	if s.demo {
		return nil, ErrDemoMode
	}
	snap, err := ParseSnapshot(data)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Importing backup (%d bytes)", len(data))
	return s.restorer.Restore(ctx, snap, models.RestoreModeImport, importRestartReason)
}
