package services

import (
	"errors"
	"fmt"
	"sort"

	"vanblog/internal/models"
	"vanblog/internal/store"

	"github.com/juju/mgo/v3/bson"
)

// 博客数据所在的集合
const (
	CollArticle  = "articles"
	CollDraft    = "drafts"
	CollCategory = "categories"
	CollStatic   = "statics"
	CollVisit    = "visits"
	CollViewer   = "viewers"
	CollMeta     = "metas"
	CollUser     = "users"
	CollSetting  = "settings"
)

// 设置子域，对应settings集合中的type字段
const (
	SettingStatic = "static"
	SettingLayout = "layout"
	SettingWaline = "waline"
	SettingMenu   = "menu"
)

// asDocument mgo解码出的嵌套文档是bson.M，统一成Document
func asDocument(v any) (models.Document, bool) {
	switch d := v.(type) {
	case map[string]any:
		return d, true
	case bson.M:
		return models.Document(d), true
	default:
		return nil, false
	}
}

/**
 * ListStore 列表型数据域(文章、草稿、分类、静态资源、访问记录)
 * @property {string} coll - 集合名
 * @property {string} key - 导入时用于匹配已有文档的字段，为空表示整体替换
 */
type ListStore struct {
	db   store.DocumentStore
	coll string
	key  string
}

func NewListStore(db store.DocumentStore, coll, key string) *ListStore {
	return &ListStore{db: db, coll: coll, key: key}
}

func (s *ListStore) All() ([]models.Document, error) {
	return s.db.FindAll(s.coll)
}

/**
 * Import a list of documents
 * @param {[]models.Document} docs - Documents without internal identifiers
 * @returns {int} Number of documents written
 * @description
 * - Keyed stores upsert by key, documents missing the key are inserted
 * - Unkeyed stores replace the whole collection
 * - Re-running with the same input gives the same collection
 */
func (s *ListStore) Import(docs []models.Document) (int, error) {
	if s.key == "" {
		if _, err := s.db.RemoveAll(s.coll); err != nil {
			return 0, fmt.Errorf("clear %s: %w", s.coll, err)
		}
		if err := s.db.Insert(s.coll, docs...); err != nil {
			return 0, fmt.Errorf("import %s: %w", s.coll, err)
		}
		return len(docs), nil
	}
	for i, doc := range docs {
		value, ok := doc[s.key]
		var err error
		if ok && value != nil {
			err = s.db.Upsert(s.coll, s.key, value, doc)
		} else {
			err = s.db.Insert(s.coll, doc)
		}
		if err != nil {
			return i, fmt.Errorf("import %s: %w", s.coll, err)
		}
	}
	return len(docs), nil
}

// singleDocument 只有一条文档的集合(meta, user)
type singleDocument struct {
	db   store.DocumentStore
	coll string
}

func (s *singleDocument) Get() (models.Document, error) {
	docs, err := s.db.FindAll(s.coll)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	return docs[0], nil
}

func (s *singleDocument) Exists() (bool, error) {
	_, err := s.Get()
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// save 覆盖已有文档并保留其_id，不存在时插入
func (s *singleDocument) save(doc models.Document) error {
	old, err := s.Get()
	if errors.Is(err, store.ErrNotFound) {
		return s.db.Insert(s.coll, doc)
	}
	if err != nil {
		return err
	}
	doc = cloneDoc(doc)
	delete(doc, "_id")
	return s.db.Upsert(s.coll, "_id", old["_id"], doc)
}

// merge 把字段合并到已有文档
func (s *singleDocument) merge(fields models.Document) error {
	old, err := s.Get()
	if err != nil {
		return err
	}
	merged := cloneDoc(old)
	for k, v := range fields {
		merged[k] = v
	}
	return s.save(merged)
}

type MetaStore struct {
	singleDocument
}

func NewMetaStore(db store.DocumentStore) *MetaStore {
	return &MetaStore{singleDocument{db: db, coll: CollMeta}}
}

func (s *MetaStore) Create(meta models.Document) error {
	return s.save(meta)
}

func (s *MetaStore) Update(meta models.Document) error {
	return s.merge(meta)
}

/**
 * Get site info from meta
 * @returns {*models.SiteInfo} Site info, nil before initialization
 */
func (s *MetaStore) GetSiteInfo() (*models.SiteInfo, error) {
	meta, err := s.Get()
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	info, ok := asDocument(meta["siteInfo"])
	if !ok {
		return nil, nil
	}
	site := &models.SiteInfo{}
	site.SiteName, _ = info["siteName"].(string)
	site.BaseURL, _ = info["baseUrl"].(string)
	site.Author, _ = info["author"].(string)
	site.SiteDesc, _ = info["siteDesc"].(string)
	return site, nil
}

type UserStore struct {
	singleDocument
}

func NewUserStore(db store.DocumentStore) *UserStore {
	return &UserStore{singleDocument{db: db, coll: CollUser}}
}

/**
 * Create the admin user
 * @param {string} name - Login name
 * @param {string} password - Password hash
 * @param {string} nickname - Display name
 * @param {string} salt - Legacy salt, empty for bcrypt hashes
 */
func (s *UserStore) CreateAdmin(name, password, nickname, salt string) error {
	return s.save(models.Document{
		"id":       0,
		"name":     name,
		"password": password,
		"nickname": nickname,
		"salt":     salt,
		"type":     "admin",
	})
}

// CreateAdminFromBackup 初始化时从备份创建管理员，口令已经是哈希
func (s *UserStore) CreateAdminFromBackup(user models.Document) error {
	name, _ := user["name"].(string)
	password, _ := user["password"].(string)
	nickname, _ := user["nickname"].(string)
	salt, _ := user["salt"].(string)
	return s.CreateAdmin(name, password, nickname, salt)
}

func (s *UserStore) UpdateUser(user models.Document) error {
	exists, err := s.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return s.save(user)
	}
	return s.merge(user)
}

/**
 * SettingStore 设置集合，每个子域一条{type, value}文档
 */
type SettingStore struct {
	db store.DocumentStore
}

func NewSettingStore(db store.DocumentStore) *SettingStore {
	return &SettingStore{db: db}
}

func (s *SettingStore) Get(settingType string) (models.Document, error) {
	doc, err := s.db.FindOne(CollSetting, "type", settingType)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	value, _ := asDocument(doc["value"])
	return value, nil
}

func (s *SettingStore) Save(settingType string, value models.Document) error {
	return s.db.Upsert(CollSetting, "type", settingType, models.Document{
		"type":  settingType,
		"value": value,
	})
}

func (s *SettingStore) GetWalineSetting() (models.WalineSetting, error) {
	value, err := s.Get(SettingWaline)
	if err != nil || value == nil {
		return nil, err
	}
	return models.WalineSetting(value), nil
}

func (s *SettingStore) SaveWalineSetting(setting models.WalineSetting) error {
	return s.Save(SettingWaline, models.Document(setting))
}

// UpdateMenuSetting 菜单同时存放在meta.menus和菜单设置中
func (s *SettingStore) UpdateMenuSetting(menus []any) error {
	return s.Save(SettingMenu, models.Document{"data": menus})
}

// ImportSetting 一次写入快照中出现的所有子域
func (s *SettingStore) ImportSetting(snap *models.SettingSnapshot) error {
	if snap == nil {
		return nil
	}
	parts := []struct {
		name  string
		value models.Document
	}{
		{SettingStatic, snap.Static},
		{SettingLayout, snap.Layout},
		{SettingWaline, models.Document(snap.Waline)},
		{SettingMenu, snap.Menu},
	}
	for _, p := range parts {
		if p.value == nil {
			continue
		}
		if err := s.Save(p.name, p.value); err != nil {
			return fmt.Errorf("import %s setting: %w", p.name, err)
		}
	}
	return nil
}

// collectTags 文章标签去重后排序
func collectTags(articles []models.Document) []string {
	seen := make(map[string]bool)
	for _, a := range articles {
		list, _ := a["tags"].([]any)
		for _, t := range list {
			if s, ok := t.(string); ok && s != "" {
				seen[s] = true
			}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func cloneDoc(doc models.Document) models.Document {
	out := make(models.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
