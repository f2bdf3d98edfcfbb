package services

import (
	"fmt"
	"regexp"
	"strings"

	"vanblog/internal/logger"
	"vanblog/internal/models"
	"vanblog/internal/store"

	"github.com/juju/mgo/v3/bson"
)

const defaultCommentCollection = "Comment"

// 评论服务不同版本初始化时集合名大小写不一致，按此优先级匹配
var commentCollectionPriority = []string{"Comment", "Comments", "comment", "comments"}

var objectIdPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)

/**
 * CommentStore 评论服务数据库中的评论导入导出
 * @description
 * - 集合名每次调用都重新解析，同一次恢复中结果一致
 * - 导出时所有顶层ObjectId字段转成十六进制文本
 * - 导入时只有_id恢复成ObjectId，pid/rid保持文本，评论服务按文本查询它们
 */
type CommentStore struct {
	db  store.DocumentStore
	log *logger.Logger
}

func NewCommentStore(db store.DocumentStore) *CommentStore {
	return &CommentStore{db: db, log: logger.Named("comment")}
}

/**
 * Resolve comment collection names
 * @returns {[]string} Exact priority matches in priority order, else fuzzy matches, else ["Comment"]
 */
func (s *CommentStore) ResolveCollectionNames() ([]string, error) {
	names, err := s.db.CollectionNames()
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	existing := make(map[string]bool, len(names))
	for _, n := range names {
		existing[n] = true
	}

	var matched []string
	for _, n := range commentCollectionPriority {
		if existing[n] {
			matched = append(matched, n)
		}
	}
	if len(matched) > 0 {
		return matched, nil
	}
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), "comment") {
			matched = append(matched, n)
		}
	}
	if len(matched) > 0 {
		return matched, nil
	}
	return []string{defaultCommentCollection}, nil
}

/**
 * Export all comments of the primary collection
 * @returns {[]models.Document} Comments with ObjectId values turned into hex text
 */
func (s *CommentStore) ExportComments() ([]models.Document, error) {
	names, err := s.ResolveCollectionNames()
	if err != nil {
		return nil, err
	}
	docs, err := s.db.FindAll(names[0])
	if err != nil {
		return nil, fmt.Errorf("read comments from %s: %w", names[0], err)
	}
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, exportComment(d))
	}
	return out, nil
}

func exportComment(doc models.Document) models.Document {
	out := make(models.Document, len(doc))
	for k, v := range doc {
		if id, ok := v.(bson.ObjectId); ok {
			out[k] = id.Hex()
			continue
		}
		out[k] = v
	}
	return out
}

/**
 * Import comments, replacing every resolved collection
 * @param {[]models.Document} docs - Exported comments
 * @description
 * - Empty input is a no-op
 * - Delete then insert, not transactional
 */
func (s *CommentStore) ImportComments(docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	names, err := s.ResolveCollectionNames()
	if err != nil {
		return err
	}
	restored := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		restored = append(restored, importComment(d))
	}
	for _, name := range names {
		removed, err := s.db.RemoveAll(name)
		if err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
		if err := s.db.Insert(name, restored...); err != nil {
			return fmt.Errorf("insert comments into %s: %w", name, err)
		}
		s.log.Infof("Replaced %d comments with %d in %s", removed, len(restored), name)
	}
	return nil
}

func importComment(doc models.Document) models.Document {
	out := make(models.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	if id, ok := out["_id"].(string); ok && objectIdPattern.MatchString(id) {
		out["_id"] = bson.ObjectIdHex(id)
	}
	return out
}
