package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/juju/mgo/v3/bson"
)

const badgerKeyPrefix = "c/"

/**
 * BadgerStore 嵌入式文档库，单机无需外部数据库
 * @description
 * - 键: c/<collection>/<_id>，值为JSON文档
 * - 没有_id的文档插入时分配新的ObjectId十六进制串
 * - ObjectId经JSON编码后变成普通文本
 */
type BadgerStore struct {
	db *badger.DB
}

func OpenBadger(dir, dbName string) (*BadgerStore, error) {
	path := filepath.Join(dir, dbName)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create badger directory: %w", err)
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func collectionPrefix(coll string) []byte {
	return []byte(badgerKeyPrefix + coll + "/")
}

func documentKey(coll, id string) []byte {
	return []byte(badgerKeyPrefix + coll + "/" + id)
}

// idKey _id在键中的文本形式，ObjectId取十六进制
func idKey(value any) (string, bool) {
	switch v := value.(type) {
	case bson.ObjectId:
		return v.Hex(), true
	case string:
		return v, v != ""
	case nil:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}

// documentID 取出或分配文档的_id
func documentID(doc Document) string {
	if id, ok := idKey(doc["_id"]); ok {
		return id
	}
	id := bson.NewObjectId().Hex()
	doc["_id"] = id
	return id
}

func (s *BadgerStore) CollectionNames() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		seen := make(map[string]bool)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rest := it.Item().Key()[len(prefix):]
			i := bytes.IndexByte(rest, '/')
			if i < 0 {
				continue
			}
			name := string(rest[:i])
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		return nil
	})
	return names, err
}

func (s *BadgerStore) FindAll(coll string) ([]Document, error) {
	docs := []Document{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := collectionPrefix(coll)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var doc Document
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			docs = append(docs, doc)
		}
		return nil
	})
	return docs, err
}

func (s *BadgerStore) FindOne(coll, field string, value any) (Document, error) {
	var found Document
	err := s.db.View(func(txn *badger.Txn) error {
		if field == "_id" {
			id, ok := idKey(value)
			if !ok {
				return ErrNotFound
			}
			item, err := txn.Get(documentKey(coll, id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			return item.Value(func(val []byte) error {
				return json.Unmarshal(val, &found)
			})
		}
		key, doc, err := s.scan(txn, coll, field, value)
		if err != nil {
			return err
		}
		if key == nil {
			return ErrNotFound
		}
		found = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// scan 按字段顺序查找第一条匹配的文档
func (s *BadgerStore) scan(txn *badger.Txn, coll, field string, value any) ([]byte, Document, error) {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := collectionPrefix(coll)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var doc Document
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		}); err != nil {
			return nil, nil, err
		}
		if sameValue(doc[field], value) {
			return it.Item().KeyCopy(nil), doc, nil
		}
	}
	return nil, nil, nil
}

func (s *BadgerStore) Insert(coll string, docs ...Document) error {
	wb := s.db.NewWriteBatch()
	for _, d := range docs {
		doc := cloneDocument(d)
		id := documentID(doc)
		data, err := json.Marshal(doc)
		if err != nil {
			wb.Cancel()
			return fmt.Errorf("encode document %s: %w", id, err)
		}
		if err := wb.Set(documentKey(coll, id), data); err != nil {
			wb.Cancel()
			return err
		}
	}
	return wb.Flush()
}

func (s *BadgerStore) Upsert(coll, field string, value any, doc Document) error {
	return s.db.Update(func(txn *badger.Txn) error {
		doc = cloneDocument(doc)
		doc[field] = value

		key, old, err := s.scan(txn, coll, field, value)
		if err != nil {
			return err
		}
		if key != nil {
			doc["_id"] = old["_id"]
		} else {
			delete(doc, "_id")
			key = documentKey(coll, documentID(doc))
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

func (s *BadgerStore) RemoveAll(coll string) (int, error) {
	prefix := collectionPrefix(coll)
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	if err := s.db.DropPrefix(prefix); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
