package services

import (
	"reflect"
	"testing"

	"vanblog/internal/models"
	"vanblog/internal/store"

	"github.com/juju/mgo/v3/bson"
)

func TestResolveCollectionNames(t *testing.T) {
	tests := []struct {
		name        string
		collections []string
		want        []string
	}{
		{"exact", []string{"Users", "Comment"}, []string{"Comment"}},
		{"priority order", []string{"comments", "Comment", "Comments"}, []string{"Comment", "Comments", "comments"}},
		{"fuzzy", []string{"Users", "wl_Comment_v2", "Counter"}, []string{"wl_Comment_v2"}},
		{"fuzzy ignored when exact exists", []string{"wl_comment", "comment"}, []string{"comment"}},
		{"default", []string{"Users", "Counter"}, []string{"Comment"}},
		{"empty database", nil, []string{"Comment"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := store.NewMemoryStore()
			for _, c := range tt.collections {
				db.CreateCollection(c)
			}
			got, err := NewCommentStore(db).ResolveCollectionNames()
			if err != nil {
				t.Fatalf("ResolveCollectionNames: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExportCommentsConvertsObjectIds(t *testing.T) {
	db := store.NewMemoryStore()
	id := bson.NewObjectId()
	pid := bson.NewObjectId()
	db.Insert("Comment", models.Document{
		"_id":     id,
		"pid":     pid,
		"comment": "hi",
		"nested":  map[string]any{"x": 1},
	})

	docs, err := NewCommentStore(db).ExportComments()
	if err != nil {
		t.Fatalf("ExportComments: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(docs))
	}
	if docs[0]["_id"] != id.Hex() || docs[0]["pid"] != pid.Hex() {
		t.Errorf("ids not converted: %v", docs[0])
	}
	if docs[0]["comment"] != "hi" {
		t.Errorf("other fields should be copied: %v", docs[0])
	}
}

func TestImportCommentsRoundTrip(t *testing.T) {
	hex := "65a1f0c2b3d4e5f601234567"
	input := []models.Document{
		{"_id": hex, "pid": "65a1f0c2b3d4e5f601234568", "rid": "65a1f0c2b3d4e5f601234569", "comment": "hi"},
		{"_id": "not-an-object-id", "comment": "legacy"},
	}

	db := store.NewMemoryStore()
	db.Insert("Comment", models.Document{"comment": "old"})
	db.Insert("comments", models.Document{"comment": "old"})
	s := NewCommentStore(db)

	if err := s.ImportComments(input); err != nil {
		t.Fatalf("ImportComments: %v", err)
	}

	for _, coll := range []string{"Comment", "comments"} {
		docs, _ := db.FindAll(coll)
		if len(docs) != 2 {
			t.Fatalf("%s: expected 2 comments, got %d", coll, len(docs))
		}
		if docs[0]["_id"] != bson.ObjectIdHex(hex) {
			t.Errorf("%s: _id should be an ObjectId, got %T", coll, docs[0]["_id"])
		}
		if _, ok := docs[0]["pid"].(string); !ok {
			t.Errorf("%s: pid should stay text, got %T", coll, docs[0]["pid"])
		}
		if docs[1]["_id"] != "not-an-object-id" {
			t.Errorf("%s: non-hex _id should be kept, got %v", coll, docs[1]["_id"])
		}
	}

	exported, err := s.ExportComments()
	if err != nil {
		t.Fatalf("ExportComments: %v", err)
	}
	if !reflect.DeepEqual(exported, input) {
		t.Errorf("round trip mismatch:\n got  %v\n want %v", exported, input)
	}
	if _, ok := input[0]["_id"].(string); !ok {
		t.Error("input documents must not be modified")
	}
}

func TestImportCommentsEmptyIsNoop(t *testing.T) {
	db := store.NewMemoryStore()
	db.Insert("Comment", models.Document{"comment": "keep"})
	if err := NewCommentStore(db).ImportComments(nil); err != nil {
		t.Fatalf("ImportComments: %v", err)
	}
	docs, _ := db.FindAll("Comment")
	if len(docs) != 1 {
		t.Errorf("existing comments should be kept, got %d", len(docs))
	}
}

func TestImportCommentsCreatesDefaultCollection(t *testing.T) {
	db := store.NewMemoryStore()
	err := NewCommentStore(db).ImportComments([]models.Document{{"comment": "first"}})
	if err != nil {
		t.Fatalf("ImportComments: %v", err)
	}
	docs, _ := db.FindAll("Comment")
	if len(docs) != 1 {
		t.Errorf("expected comment in default collection, got %d", len(docs))
	}
}
