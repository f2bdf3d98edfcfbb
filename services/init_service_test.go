package services

import (
	"context"
	"errors"
	"testing"

	"vanblog/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func initRequest() models.InitRequest {
	return models.InitRequest{
		User: models.InitUser{Username: "admin", Password: "secret"},
		SiteInfo: models.SiteInfo{
			SiteName: "Blog",
			BaseURL:  "https://blog.x.com",
			Author:   "me",
		},
	}
}

func TestInit(t *testing.T) {
	srv, _ := newTestServer(t, false)
	svc := srv.Init()

	if done, _ := svc.Initialized(); done {
		t.Fatal("fresh system should not be initialized")
	}
	if err := svc.Init(context.Background(), initRequest()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if done, _ := svc.Initialized(); !done {
		t.Error("system should be initialized")
	}

	user, err := srv.stores.User.Get()
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user["name"] != "admin" || user["nickname"] != "admin" || user["type"] != "admin" {
		t.Errorf("unexpected user %v", user)
	}
	hash, _ := user["password"].(string)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")); err != nil {
		t.Errorf("password should be a bcrypt hash: %v", err)
	}
	site, _ := srv.stores.Meta.GetSiteInfo()
	if site == nil || site.BaseURL != "https://blog.x.com" {
		t.Errorf("unexpected site info %v", site)
	}

	if err := svc.Init(context.Background(), initRequest()); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("expected ErrAlreadyInitialized, got %v", err)
	}
	if _, err := svc.InitRestore(context.Background(), []byte(`{}`)); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestInitRestore(t *testing.T) {
	srv, walineDB := newTestServer(t, false)
	data := []byte(`{
		"user": {"_id": "x", "name": "owner", "password": "hash", "salt": "s"},
		"meta": {"siteInfo": {"siteName": "Restored"}},
		"articles": [{"id": 1, "title": "a"}],
		"waline": {"comments": [{"_id": "65a1f0c2b3d4e5f601234567", "comment": "hi"}]}
	}`)

	result, err := srv.Init().InitRestore(context.Background(), data)
	if err != nil {
		t.Fatalf("InitRestore: %v", err)
	}
	if result.Mode != models.RestoreModeInit {
		t.Errorf("unexpected mode %s", result.Mode)
	}
	user, _ := srv.stores.User.Get()
	if user["name"] != "owner" || user["type"] != "admin" || user["salt"] != "s" {
		t.Errorf("admin should be created from backup, got %v", user)
	}
	if n := count(t, walineDB, "Comment"); n != 1 {
		t.Errorf("expected 1 comment, got %d", n)
	}
	if done, _ := srv.Init().Initialized(); !done {
		t.Error("system should be initialized")
	}
}

func TestInitBusy(t *testing.T) {
	srv, _ := newTestServer(t, false)
	svc := srv.Init()
	svc.initializing.Store(true)
	defer svc.initializing.Store(false)

	if err := svc.Init(context.Background(), initRequest()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if _, err := svc.InitRestore(context.Background(), []byte(`{}`)); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if done, _ := svc.Initialized(); done {
		t.Error("rejected init must not write")
	}
}

func TestInitBusyDuringRestore(t *testing.T) {
	srv, _ := newTestServer(t, false)
	svc := srv.Init()

	var initErr error
	err := srv.Restorer().Exclusive(func() error {
		initErr = svc.Init(context.Background(), initRequest())
		return nil
	})
	if err != nil {
		t.Fatalf("Exclusive: %v", err)
	}
	if !errors.Is(initErr, ErrBusy) {
		t.Errorf("expected ErrBusy while the restore guard is held, got %v", initErr)
	}
	if done, _ := svc.Initialized(); done {
		t.Error("rejected init must not write")
	}
	if srv.Restorer().Running() {
		t.Error("guard should be released")
	}

	if err := svc.Init(context.Background(), initRequest()); err != nil {
		t.Fatalf("Init after the guard is released: %v", err)
	}
}
