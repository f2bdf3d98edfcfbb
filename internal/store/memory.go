package store

import (
	"sync"

	"github.com/juju/mgo/v3/bson"
)

/**
 * MemoryStore 进程内文档库，用于演示模式和测试
 * @description
 * - 保留原始Go类型，bson.ObjectId不会被转换
 * - 和mongo一样，没有_id的文档插入时分配ObjectId
 * - 集合按插入顺序返回文档
 */
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
	order       []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Document)}
}

// CreateCollection 建立空集合，模拟评论服务初始化后的数据库
func (s *MemoryStore) CreateCollection(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(name)
}

func (s *MemoryStore) ensure(name string) {
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = nil
		s.order = append(s.order, name)
	}
}

func (s *MemoryStore) CollectionNames() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...), nil
}

func (s *MemoryStore) FindAll(coll string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.collections[coll]))
	for _, d := range s.collections[coll] {
		docs = append(docs, cloneDocument(d))
	}
	return docs, nil
}

func (s *MemoryStore) FindOne(coll, field string, value any) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.collections[coll] {
		if sameValue(d[field], value) {
			return cloneDocument(d), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Insert(coll string, docs ...Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensure(coll)
	for _, d := range docs {
		doc := cloneDocument(d)
		if doc["_id"] == nil {
			doc["_id"] = bson.NewObjectId()
		}
		s.collections[coll] = append(s.collections[coll], doc)
	}
	return nil
}

func (s *MemoryStore) Upsert(coll, field string, value any, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensure(coll)
	doc = cloneDocument(doc)
	doc[field] = value
	for i, d := range s.collections[coll] {
		if sameValue(d[field], value) {
			if doc["_id"] == nil {
				doc["_id"] = d["_id"]
			}
			s.collections[coll][i] = doc
			return nil
		}
	}
	if doc["_id"] == nil {
		doc["_id"] = bson.NewObjectId()
	}
	s.collections[coll] = append(s.collections[coll], doc)
	return nil
}

func (s *MemoryStore) RemoveAll(coll string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.collections[coll])
	if _, ok := s.collections[coll]; ok {
		s.collections[coll] = nil
	}
	return n, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
