package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/juju/mgo/v3"
	"github.com/juju/mgo/v3/bson"
)

// MongoStore 基于mgo的文档库，每次操作复制一个会话
type MongoStore struct {
	session *mgo.Session
	dbName  string
}

func OpenMongo(url, dbName string, timeout time.Duration) (*MongoStore, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	session, err := mgo.DialWithTimeout(url, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial mongo: %w", err)
	}
	session.SetMode(mgo.Monotonic, true)
	return &MongoStore{session: session, dbName: dbName}, nil
}

func (s *MongoStore) with(fn func(db *mgo.Database) error) error {
	session := s.session.Copy()
	defer session.Close()
	return fn(session.DB(s.dbName))
}

func (s *MongoStore) CollectionNames() ([]string, error) {
	var names []string
	err := s.with(func(db *mgo.Database) error {
		var err error
		names, err = db.CollectionNames()
		return err
	})
	return names, err
}

func (s *MongoStore) FindAll(coll string) ([]Document, error) {
	var raw []bson.M
	err := s.with(func(db *mgo.Database) error {
		return db.C(coll).Find(nil).All(&raw)
	})
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(raw))
	for _, d := range raw {
		docs = append(docs, Document(d))
	}
	return docs, nil
}

func (s *MongoStore) FindOne(coll, field string, value any) (Document, error) {
	var doc bson.M
	err := s.with(func(db *mgo.Database) error {
		return db.C(coll).Find(bson.M{field: value}).One(&doc)
	})
	if errors.Is(err, mgo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return Document(doc), nil
}

func (s *MongoStore) Insert(coll string, docs ...Document) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		items = append(items, bson.M(d))
	}
	return s.with(func(db *mgo.Database) error {
		return db.C(coll).Insert(items...)
	})
}

func (s *MongoStore) Upsert(coll, field string, value any, doc Document) error {
	return s.with(func(db *mgo.Database) error {
		_, err := db.C(coll).Upsert(bson.M{field: value}, bson.M(doc))
		return err
	})
}

func (s *MongoStore) RemoveAll(coll string) (int, error) {
	var removed int
	err := s.with(func(db *mgo.Database) error {
		info, err := db.C(coll).RemoveAll(nil)
		if info != nil {
			removed = info.Removed
		}
		return err
	})
	return removed, err
}

func (s *MongoStore) Close() error {
	s.session.Close()
	return nil
}
