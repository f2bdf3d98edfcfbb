package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"vanblog/internal/logger"
	"vanblog/internal/models"
	"vanblog/internal/store"
)

const commentRestartReason = "comment data imported"

type listImporter interface {
	Import(docs []models.Document) (int, error)
}

type userImporter interface {
	CreateAdminFromBackup(user models.Document) error
	UpdateUser(user models.Document) error
}

type metaImporter interface {
	Get() (models.Document, error)
	Create(meta models.Document) error
	Update(meta models.Document) error
}

type settingImporter interface {
	ImportSetting(snap *models.SettingSnapshot) error
	UpdateMenuSetting(menus []any) error
}

type commentImporter interface {
	ImportComments(docs []models.Document) error
}

type walineRestarter interface {
	Restart(ctx context.Context, reason string) error
}

/**
 * RestoreDeps 恢复时用到的各数据域
 */
type RestoreDeps struct {
	Articles   listImporter
	Drafts     listImporter
	Categories listImporter
	Static     listImporter
	Visit      listImporter
	Viewer     listImporter
	User       userImporter
	Meta       metaImporter
	Setting    settingImporter
	Comments   commentImporter
	Waline     walineRestarter
}

/**
 * Restorer 把完整快照按固定顺序写入各数据域
 * @description
 * - 同一时间只允许一个恢复，第二个调用方立即得到ErrBusy
 * - 数据域导入出错直接返回，评论服务重启失败只记为警告
 */
type Restorer struct {
	deps    RestoreDeps
	running atomic.Bool
	log     *logger.Logger
}

func NewRestorer(deps RestoreDeps) *Restorer {
	return &Restorer{deps: deps, log: logger.Named("restore")}
}

func (r *Restorer) Running() bool {
	return r.running.Load()
}

/**
 * Run fn while holding the restore guard
 * @returns {error} ErrBusy if a restore or another guarded operation is in flight
 * @description
 * - Used by operations that restart the comment service outside a restore
 */
func (r *Restorer) Exclusive(fn func() error) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer r.running.Store(false)
	return fn()
}

/**
 * Restore a backup snapshot
 * @param {context.Context} ctx - Checked between steps
 * @param {*models.BackupSnapshot} snap - Snapshot, nil fields are skipped
 * @param {models.RestoreMode} mode - init creates the admin, import updates it
 * @param {string} reason - Restart reason when comment settings are restored
 * @returns {*models.RestoreResult} Counts, restarts and warnings
 */
func (r *Restorer) Restore(ctx context.Context, snap *models.BackupSnapshot, mode models.RestoreMode, reason string) (*models.RestoreResult, error) {
	start := time.Now()
	if snap == nil {
		return nil, errors.New("empty backup")
	}
	if !r.running.CompareAndSwap(false, true) {
		observeRestore(string(mode), start, ErrBusy)
		return nil, ErrBusy
	}
	defer r.running.Store(false)

	result := &models.RestoreResult{Mode: mode, Imported: map[string]int{}}
	err := r.restore(ctx, snap, mode, reason, result)
	result.Duration = time.Since(start).String()
	observeRestore(string(mode), start, err)
	if err != nil {
		r.log.Errorf("Restore (%s) failed: %v", mode, err)
		return result, err
	}
	r.log.Infof("Restore (%s) finished in %s, restarts: %d, warnings: %d",
		mode, result.Duration, result.Restarts, len(result.Warnings))
	return result, nil
}

func (r *Restorer) restore(ctx context.Context, snap *models.BackupSnapshot, mode models.RestoreMode, reason string, result *models.RestoreResult) error {
	d := r.deps

	articles := removeIDs(snap.Articles)
	drafts := removeIDs(snap.Drafts)
	viewer := removeIDs(snap.Viewer)
	visit := removeIDs(snap.Visit)
	static := removeIDs(snap.Static)
	setting := snap.Setting
	if setting != nil && setting.Static != nil {
		copied := *setting
		copied.Static = removeID(setting.Static)
		setting = &copied
	}

	if snap.User != nil {
		user := removeID(snap.User)
		var err error
		if mode == models.RestoreModeInit {
			err = d.User.CreateAdminFromBackup(user)
		} else {
			err = d.User.UpdateUser(user)
		}
		if err != nil {
			return fmt.Errorf("restore user: %w", err)
		}
		result.Imported["user"] = 1
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if snap.Meta != nil {
		if err := r.restoreMeta(removeID(snap.Meta)); err != nil {
			return err
		}
		result.Imported["meta"] = 1
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.importList(result, "articles", d.Articles, articles); err != nil {
		return err
	}
	if err := r.importList(result, "drafts", d.Drafts, drafts); err != nil {
		return err
	}
	if err := r.importList(result, "categories", d.Categories, snap.Categories); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := d.Setting.ImportSetting(setting); err != nil {
		return fmt.Errorf("restore settings: %w", err)
	}
	if setting != nil && setting.Waline != nil {
		r.restart(ctx, result, reason)
	}

	if snap.Waline != nil && len(snap.Waline.Comments) > 0 {
		if err := d.Comments.ImportComments(snap.Waline.Comments); err != nil {
			return fmt.Errorf("restore comments: %w", err)
		}
		result.Imported["comments"] = len(snap.Waline.Comments)
		r.restart(ctx, result, commentRestartReason)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.importList(result, "static", d.Static, static); err != nil {
		return err
	}
	if err := r.importList(result, "visit", d.Visit, visit); err != nil {
		return err
	}
	return r.importList(result, "viewer", d.Viewer, viewer)
}

func (r *Restorer) restoreMeta(meta models.Document) error {
	_, err := r.deps.Meta.Get()
	switch {
	case err == nil:
		err = r.deps.Meta.Update(meta)
	case errors.Is(err, store.ErrNotFound):
		err = r.deps.Meta.Create(meta)
	}
	if err != nil {
		return fmt.Errorf("restore meta: %w", err)
	}
	if menus, ok := meta["menus"].([]any); ok && len(menus) > 0 {
		if err := r.deps.Setting.UpdateMenuSetting(menus); err != nil {
			return fmt.Errorf("restore menu setting: %w", err)
		}
	}
	return nil
}

// importList 空列表跳过，整体替换型的数据域不会被清空
func (r *Restorer) importList(result *models.RestoreResult, name string, importer listImporter, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	n, err := importer.Import(docs)
	if err != nil {
		return fmt.Errorf("restore %s: %w", name, err)
	}
	result.Imported[name] = n
	return nil
}

// restart 重启失败不影响已经写入的数据，记为警告
func (r *Restorer) restart(ctx context.Context, result *models.RestoreResult, reason string) {
	result.Restarts++
	if err := r.deps.Waline.Restart(ctx, reason); err != nil {
		r.log.Warnf("Restart waline (%s) failed: %v", reason, err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("restart waline (%s): %v", reason, err))
	}
}

// removeIDs 去掉内部标识，由目标库重新生成，避免跨环境冲突
func removeIDs(docs []models.Document) []models.Document {
	if docs == nil {
		return nil
	}
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, removeID(d))
	}
	return out
}

func removeID(doc models.Document) models.Document {
	out := cloneDoc(doc)
	delete(out, "_id")
	delete(out, "__v")
	return out
}
