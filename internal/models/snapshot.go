package models

// Document 松散类型的文档记录，对应文档库中的一条数据
type Document = map[string]any

type RestoreMode string

const (
	// 初始化时从备份恢复，会新建管理员
	RestoreModeInit RestoreMode = "init"
	// 后台导入备份，原地更新用户
	RestoreModeImport RestoreMode = "import"
)

/**
 * Full point-in-time export of every blog data domain
 * @description
 * - A nil field means "no change for that domain" on import
 * - Exchanged as one pretty-printed JSON document
 */
type BackupSnapshot struct {
	Articles   []Document       `json:"articles,omitempty"`
	Drafts     []Document       `json:"drafts,omitempty"`
	Categories []Document       `json:"categories,omitempty"`
	Tags       []string         `json:"tags,omitempty"`
	Meta       Document         `json:"meta,omitempty"`
	User       Document         `json:"user,omitempty"`
	Viewer     []Document       `json:"viewer,omitempty"`
	Visit      []Document       `json:"visit,omitempty"`
	Static     []Document       `json:"static,omitempty"`
	Setting    *SettingSnapshot `json:"setting,omitempty"`
	Waline     *WalineSnapshot  `json:"waline,omitempty"`
}

// SettingSnapshot 各个设置子域
type SettingSnapshot struct {
	Static Document      `json:"static,omitempty"`
	Layout Document      `json:"layout,omitempty"`
	Waline WalineSetting `json:"waline,omitempty"`
	Menu   Document      `json:"menu,omitempty"`
}

type WalineSnapshot struct {
	Comments []Document `json:"comments,omitempty"`
}

// RestoreResult 恢复结果，重启失败等非致命问题记录在Warnings中
type RestoreResult struct {
	Mode     RestoreMode    `json:"mode"`
	Restarts int            `json:"restarts"`
	Imported map[string]int `json:"imported"`
	Warnings []string       `json:"warnings,omitempty"`
	Duration string         `json:"duration"`
}

// SiteInfo 站点信息，来自meta.siteInfo
type SiteInfo struct {
	SiteName string `json:"siteName"`
	BaseURL  string `json:"baseUrl"`
	Author   string `json:"author,omitempty"`
	SiteDesc string `json:"siteDesc,omitempty"`
}

// InitRequest 系统初始化请求
type InitRequest struct {
	User     InitUser `json:"user" binding:"required"`
	SiteInfo SiteInfo `json:"siteInfo"`
}

type InitUser struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname"`
}
