package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"vanblog/internal/models"
	"vanblog/internal/store"
)

type stepLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *stepLog) add(step string) {
	l.mu.Lock()
	l.steps = append(l.steps, step)
	l.mu.Unlock()
}

func (l *stepLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.steps...)
}

func (l *stepLog) count(step string) int {
	n := 0
	for _, s := range l.list() {
		if s == step {
			n++
		}
	}
	return n
}

type fakeList struct {
	log  *stepLog
	name string
	docs []models.Document
	err  error
}

func (f *fakeList) Import(docs []models.Document) (int, error) {
	f.log.add(f.name)
	if f.err != nil {
		return 0, f.err
	}
	f.docs = docs
	return len(docs), nil
}

type fakeUser struct {
	log     *stepLog
	created models.Document
	updated models.Document
}

func (f *fakeUser) CreateAdminFromBackup(user models.Document) error {
	f.log.add("user.create")
	f.created = user
	return nil
}

func (f *fakeUser) UpdateUser(user models.Document) error {
	f.log.add("user.update")
	f.updated = user
	return nil
}

type fakeMeta struct {
	log      *stepLog
	existing models.Document
	saved    models.Document
}

func (f *fakeMeta) Get() (models.Document, error) {
	if f.existing == nil {
		return nil, store.ErrNotFound
	}
	return f.existing, nil
}

func (f *fakeMeta) Create(meta models.Document) error {
	f.log.add("meta.create")
	f.saved = meta
	return nil
}

func (f *fakeMeta) Update(meta models.Document) error {
	f.log.add("meta.update")
	f.saved = meta
	return nil
}

type fakeSetting struct {
	log      *stepLog
	imported *models.SettingSnapshot
	menus    []any
}

func (f *fakeSetting) ImportSetting(snap *models.SettingSnapshot) error {
	f.log.add("setting")
	f.imported = snap
	return nil
}

func (f *fakeSetting) UpdateMenuSetting(menus []any) error {
	f.log.add("menu")
	f.menus = menus
	return nil
}

type fakeComments struct {
	log  *stepLog
	docs []models.Document
}

func (f *fakeComments) ImportComments(docs []models.Document) error {
	f.log.add("comments")
	f.docs = docs
	return nil
}

// fakeRestarter 可以在重启时阻塞，用于构造并发恢复
type fakeRestarter struct {
	log     *stepLog
	err     error
	entered chan struct{}
	release chan struct{}
}

func (f *fakeRestarter) Restart(ctx context.Context, reason string) error {
	f.log.add("restart:" + reason)
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	return f.err
}

type restoreFixture struct {
	log        *stepLog
	articles   *fakeList
	drafts     *fakeList
	categories *fakeList
	static     *fakeList
	visit      *fakeList
	viewer     *fakeList
	user       *fakeUser
	meta       *fakeMeta
	setting    *fakeSetting
	comments   *fakeComments
	waline     *fakeRestarter
	restorer   *Restorer
}

func newRestoreFixture() *restoreFixture {
	log := &stepLog{}
	f := &restoreFixture{
		log:        log,
		articles:   &fakeList{log: log, name: "articles"},
		drafts:     &fakeList{log: log, name: "drafts"},
		categories: &fakeList{log: log, name: "categories"},
		static:     &fakeList{log: log, name: "static"},
		visit:      &fakeList{log: log, name: "visit"},
		viewer:     &fakeList{log: log, name: "viewer"},
		user:       &fakeUser{log: log},
		meta:       &fakeMeta{log: log},
		setting:    &fakeSetting{log: log},
		comments:   &fakeComments{log: log},
		waline:     &fakeRestarter{log: log},
	}
	f.restorer = NewRestorer(RestoreDeps{
		Articles:   f.articles,
		Drafts:     f.drafts,
		Categories: f.categories,
		Static:     f.static,
		Visit:      f.visit,
		Viewer:     f.viewer,
		User:       f.user,
		Meta:       f.meta,
		Setting:    f.setting,
		Comments:   f.comments,
		Waline:     f.waline,
	})
	return f
}

func fullSnapshot() *models.BackupSnapshot {
	return &models.BackupSnapshot{
		Articles:   []models.Document{{"_id": "a1", "__v": 0, "id": 1, "title": "hello"}},
		Drafts:     []models.Document{{"_id": "d1", "id": 2}},
		Categories: []models.Document{{"name": "go"}},
		Meta: models.Document{
			"_id":      "m1",
			"siteInfo": map[string]any{"siteName": "Blog"},
			"menus":    []any{map[string]any{"name": "home"}},
		},
		User:   models.Document{"_id": "u1", "name": "admin", "password": "hash"},
		Viewer: []models.Document{{"_id": "v1", "date": "2024-01-01", "viewer": 3}},
		Visit:  []models.Document{{"_id": "v2", "pathname": "/", "visited": 1}},
		Static: []models.Document{{"_id": "s1", "sign": "abc"}},
		Setting: &models.SettingSnapshot{
			Static: models.Document{"_id": "st", "storageType": "local"},
			Waline: models.WalineSetting{"smtp.enabled": false},
		},
		Waline: &models.WalineSnapshot{Comments: []models.Document{{"_id": "65a1f0c2b3d4e5f601234567"}}},
	}
}

func TestRestoreOrder(t *testing.T) {
	f := newRestoreFixture()
	f.meta.existing = models.Document{"_id": "old"}

	result, err := f.restorer.Restore(context.Background(), fullSnapshot(), models.RestoreModeImport, "backup imported")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	want := []string{
		"user.update",
		"meta.update",
		"menu",
		"articles",
		"drafts",
		"categories",
		"setting",
		"restart:backup imported",
		"comments",
		"restart:" + commentRestartReason,
		"static",
		"visit",
		"viewer",
	}
	if got := f.log.list(); !reflect.DeepEqual(got, want) {
		t.Errorf("steps:\n got  %v\n want %v", got, want)
	}
	if result.Restarts != 2 {
		t.Errorf("expected 2 restarts, got %d", result.Restarts)
	}
	if result.Imported["articles"] != 1 || result.Imported["comments"] != 1 || result.Imported["user"] != 1 {
		t.Errorf("unexpected counts %v", result.Imported)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", result.Warnings)
	}
	if f.restorer.Running() {
		t.Error("guard should be released")
	}
}

func TestRestoreStripsIdentifiers(t *testing.T) {
	f := newRestoreFixture()
	snap := fullSnapshot()

	if _, err := f.restorer.Restore(context.Background(), snap, models.RestoreModeImport, "backup imported"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	stripped := map[string]models.Document{
		"article": f.articles.docs[0],
		"draft":   f.drafts.docs[0],
		"viewer":  f.viewer.docs[0],
		"visit":   f.visit.docs[0],
		"static":  f.static.docs[0],
		"user":    f.user.updated,
		"meta":    f.meta.saved,
		"setting": f.setting.imported.Static,
	}
	for name, doc := range stripped {
		if _, ok := doc["_id"]; ok {
			t.Errorf("%s still has _id", name)
		}
		if _, ok := doc["__v"]; ok {
			t.Errorf("%s still has __v", name)
		}
	}
	if f.articles.docs[0]["title"] != "hello" {
		t.Errorf("other fields should be kept: %v", f.articles.docs[0])
	}
	if snap.Articles[0]["_id"] != "a1" {
		t.Error("snapshot must not be modified")
	}
	if f.comments.docs[0]["_id"] != "65a1f0c2b3d4e5f601234567" {
		t.Error("comment ids are kept for the comment store")
	}
}

func TestRestoreInitMode(t *testing.T) {
	f := newRestoreFixture()
	snap := fullSnapshot()

	if _, err := f.restorer.Restore(context.Background(), snap, models.RestoreModeInit, "system initialized"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if f.log.count("user.create") != 1 || f.log.count("user.update") != 0 {
		t.Errorf("init mode should create the admin, steps %v", f.log.list())
	}
	if f.log.count("meta.create") != 1 {
		t.Errorf("missing meta should be created, steps %v", f.log.list())
	}
	if len(f.setting.menus) != 1 {
		t.Errorf("menus should be pushed to the menu setting, got %v", f.setting.menus)
	}
}

func TestRestoreCommentsOnly(t *testing.T) {
	f := newRestoreFixture()
	snap := &models.BackupSnapshot{
		Waline: &models.WalineSnapshot{Comments: []models.Document{{"comment": "a"}, {"comment": "b"}}},
	}

	result, err := f.restorer.Restore(context.Background(), snap, models.RestoreModeImport, "backup imported")
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if result.Restarts != 1 || f.log.count("restart:"+commentRestartReason) != 1 {
		t.Errorf("expected a single comment restart, steps %v", f.log.list())
	}
	if result.Imported["comments"] != 2 {
		t.Errorf("expected 2 comments, got %v", result.Imported)
	}
}

func TestRestoreSkipsEmptyLists(t *testing.T) {
	f := newRestoreFixture()
	snap := &models.BackupSnapshot{
		Articles: []models.Document{{"id": 1}},
		Visit:    []models.Document{},
	}

	if _, err := f.restorer.Restore(context.Background(), snap, models.RestoreModeImport, "backup imported"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for _, step := range []string{"visit", "viewer", "static", "drafts", "categories", "comments"} {
		if f.log.count(step) != 0 {
			t.Errorf("%s should be skipped, steps %v", step, f.log.list())
		}
	}
	if f.log.count("restart:backup imported") != 0 {
		t.Error("no restart without comment settings")
	}
}

func TestRestoreRestartFailureIsWarning(t *testing.T) {
	f := newRestoreFixture()
	f.waline.err = errors.New("spawn failed")

	result, err := f.restorer.Restore(context.Background(), fullSnapshot(), models.RestoreModeImport, "backup imported")
	if err != nil {
		t.Fatalf("restart failure should not fail the restore: %v", err)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", result.Warnings)
	}
	if f.log.count("viewer") != 1 {
		t.Error("restore should continue after a failed restart")
	}
}

func TestRestoreStopsOnImportError(t *testing.T) {
	f := newRestoreFixture()
	f.articles.err = errors.New("disk full")

	_, err := f.restorer.Restore(context.Background(), fullSnapshot(), models.RestoreModeImport, "backup imported")
	if err == nil {
		t.Fatal("expected error")
	}
	if f.log.count("drafts") != 0 || f.log.count("comments") != 0 {
		t.Errorf("later steps should not run, steps %v", f.log.list())
	}
	if f.restorer.Running() {
		t.Error("guard should be released after an error")
	}
}

func TestRestoreCanceled(t *testing.T) {
	f := newRestoreFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.restorer.Restore(ctx, fullSnapshot(), models.RestoreModeImport, "backup imported")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if f.log.count("articles") != 0 {
		t.Errorf("no list should be imported, steps %v", f.log.list())
	}
}

func TestRestoreNilSnapshot(t *testing.T) {
	f := newRestoreFixture()
	if _, err := f.restorer.Restore(context.Background(), nil, models.RestoreModeImport, ""); err == nil {
		t.Error("expected error for nil snapshot")
	}
}

func TestRestoreBusy(t *testing.T) {
	f := newRestoreFixture()
	f.waline.entered = make(chan struct{})
	f.waline.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		snap := &models.BackupSnapshot{
			Setting: &models.SettingSnapshot{Waline: models.WalineSetting{}},
		}
		_, err := f.restorer.Restore(context.Background(), snap, models.RestoreModeImport, "first")
		done <- err
	}()

	select {
	case <-f.waline.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first restore never reached the restart")
	}
	if !f.restorer.Running() {
		t.Error("restore should be running")
	}

	_, err := f.restorer.Restore(context.Background(), fullSnapshot(), models.RestoreModeImport, "second")
	if !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if err := f.restorer.Exclusive(func() error { return nil }); !errors.Is(err, ErrBusy) {
		t.Errorf("Exclusive should be rejected during restore, got %v", err)
	}
	if f.log.count("articles") != 0 || f.log.count("user.update") != 0 {
		t.Errorf("rejected restore must not write, steps %v", f.log.list())
	}

	close(f.waline.release)
	if err := <-done; err != nil {
		t.Fatalf("first restore: %v", err)
	}
	if f.restorer.Running() {
		t.Error("guard should be released")
	}
	if err := f.restorer.Exclusive(func() error { return nil }); err != nil {
		t.Errorf("Exclusive after restore: %v", err)
	}
}
