package store

import (
	"errors"
	"testing"

	"vanblog/internal/config"

	"github.com/juju/mgo/v3/bson"
)

func openBadger(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadger(t.TempDir(), "vanBlog")
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDocumentStore(t *testing.T, s DocumentStore) {
	names, err := s.CollectionNames()
	if err != nil || len(names) != 0 {
		t.Fatalf("expected empty store, got %v, %v", names, err)
	}

	err = s.Insert("article",
		Document{"id": 1, "title": "hello"},
		Document{"id": 2, "title": "world"},
	)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	docs, err := s.FindAll("article")
	if err != nil || len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d, %v", len(docs), err)
	}

	doc, err := s.FindOne("article", "id", 2)
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if doc["title"] != "world" {
		t.Errorf("unexpected document %v", doc)
	}
	if _, err := s.FindOne("article", "id", 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.Upsert("article", "id", 2, Document{"title": "updated"}); err != nil {
		t.Fatalf("Upsert existing: %v", err)
	}
	if err := s.Upsert("article", "id", 3, Document{"title": "new"}); err != nil {
		t.Fatalf("Upsert new: %v", err)
	}
	docs, _ = s.FindAll("article")
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents after upsert, got %d", len(docs))
	}
	doc, _ = s.FindOne("article", "id", 2)
	if doc["title"] != "updated" {
		t.Errorf("upsert did not replace document: %v", doc)
	}

	s.Insert("Comment", Document{"comment": "hi"})
	names, _ = s.CollectionNames()
	if len(names) != 2 {
		t.Errorf("expected 2 collections, got %v", names)
	}

	n, err := s.RemoveAll("article")
	if err != nil || n != 3 {
		t.Errorf("expected 3 removed, got %d, %v", n, err)
	}
	docs, _ = s.FindAll("article")
	if len(docs) != 0 {
		t.Errorf("expected empty collection, got %v", docs)
	}
}

func TestMemoryStore(t *testing.T) {
	testDocumentStore(t, NewMemoryStore())
}

func TestBadgerStore(t *testing.T) {
	testDocumentStore(t, openBadger(t))
}

func TestMemoryStoreKeepsObjectId(t *testing.T) {
	s := NewMemoryStore()
	id := bson.NewObjectId()
	s.Insert("Comment", Document{"_id": id})

	docs, _ := s.FindAll("Comment")
	if _, ok := docs[0]["_id"].(bson.ObjectId); !ok {
		t.Errorf("expected bson.ObjectId, got %T", docs[0]["_id"])
	}

	s.CreateCollection("Users")
	names, _ := s.CollectionNames()
	if len(names) != 2 || names[1] != "Users" {
		t.Errorf("unexpected collections %v", names)
	}
}

func TestBadgerStoreObjectIdKey(t *testing.T) {
	s := openBadger(t)
	id := bson.NewObjectId()
	if err := s.Insert("Comment", Document{"_id": id, "pid": "abc"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	doc, err := s.FindOne("Comment", "_id", id.Hex())
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if doc["_id"] != id.Hex() {
		t.Errorf("expected hex id, got %v", doc["_id"])
	}
	if _, err := s.FindOne("Comment", "_id", id); err != nil {
		t.Errorf("FindOne by ObjectId: %v", err)
	}
	if err := s.Upsert("Comment", "_id", id, Document{"pid": "xyz"}); err != nil {
		t.Fatalf("Upsert by ObjectId: %v", err)
	}
	docs, _ := s.FindAll("Comment")
	if len(docs) != 1 || docs[0]["pid"] != "xyz" || docs[0]["_id"] != id.Hex() {
		t.Errorf("upsert by ObjectId should replace the document, got %v", docs)
	}

	s.Insert("Comment", Document{"pid": "def"})
	docs, _ = s.FindAll("Comment")
	for _, d := range docs {
		if d["_id"] == nil || d["_id"] == "" {
			t.Errorf("document without _id: %v", d)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "sqlite"}, "vanBlog"); err == nil {
		t.Error("expected error for unknown driver")
	}
	s, err := Open(config.DatabaseConfig{Driver: DriverMemory}, "vanBlog")
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	s.Close()
}
