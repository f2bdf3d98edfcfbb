package store

import (
	"errors"
	"fmt"

	"vanblog/internal/config"
	"vanblog/internal/models"

	"github.com/juju/mgo/v3/bson"
)

type Document = models.Document

var ErrNotFound = errors.New("document not found")

const (
	DriverMongo  = "mongo"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

/**
 * DocumentStore 以集合为单位操作的文档库
 * @description
 * - 查询层被当作黑盒，只提供集合级别的操作
 * - Upsert按单个字段匹配，命中则整体替换，否则插入
 * - FindOne未命中返回ErrNotFound
 */
type DocumentStore interface {
	CollectionNames() ([]string, error)
	FindAll(coll string) ([]Document, error)
	FindOne(coll, field string, value any) (Document, error)
	Insert(coll string, docs ...Document) error
	Upsert(coll, field string, value any, doc Document) error
	RemoveAll(coll string) (int, error)
	Close() error
}

/**
 * Open document store of the configured driver
 * @param {config.DatabaseConfig} cfg - Database configuration
 * @param {string} dbName - Database name, badger keeps each database in its own sub-directory
 * @returns {DocumentStore} Opened store
 */
func Open(cfg config.DatabaseConfig, dbName string) (DocumentStore, error) {
	switch cfg.Driver {
	case DriverMongo, "":
		return OpenMongo(cfg.URL, dbName, cfg.Timeout)
	case DriverBadger:
		return OpenBadger(cfg.BadgerDir, dbName)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver '%s'", cfg.Driver)
	}
}

// cloneDocument 浅拷贝，避免调用方修改存储中的数据
func cloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// sameValue JSON解码后数字都是float64、ObjectId是十六进制文本，按字面值比较
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return literal(a) == literal(b)
}

func literal(v any) string {
	if id, ok := v.(bson.ObjectId); ok {
		return id.Hex()
	}
	return fmt.Sprint(v)
}
