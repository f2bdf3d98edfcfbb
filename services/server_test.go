package services

import (
	"context"
	"errors"
	"testing"

	"vanblog/internal/models"
)

func TestUpdateWalineSetting(t *testing.T) {
	srv, _ := newTestServer(t, false)
	setting := models.WalineSetting{"smtp.enabled": true, "smtp.host": "mail.x.com"}

	err := srv.UpdateWalineSetting(context.Background(), setting)
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("restart should fail without an entry, got %v", err)
	}
	saved, err := srv.Settings().GetWalineSetting()
	if err != nil {
		t.Fatalf("GetWalineSetting: %v", err)
	}
	if saved["smtp.host"] != "mail.x.com" {
		t.Errorf("setting not saved: %v", saved)
	}
	if srv.Restorer().Running() {
		t.Error("guard should be released")
	}
}

func TestUpdateWalineSettingDemo(t *testing.T) {
	srv, _ := newTestServer(t, true)
	err := srv.UpdateWalineSetting(context.Background(), models.WalineSetting{"smtp.enabled": true})
	if !errors.Is(err, ErrDemoMode) {
		t.Errorf("expected ErrDemoMode, got %v", err)
	}
}

func TestControlWalineDuringRestore(t *testing.T) {
	srv, _ := newTestServer(t, false)
	srv.restorer.running.Store(true)
	defer srv.restorer.running.Store(false)

	for _, action := range []string{"start", "stop", "restart"} {
		if err := srv.ControlWaline(context.Background(), action); !errors.Is(err, ErrBusy) {
			t.Errorf("%s: expected ErrBusy, got %v", action, err)
		}
	}
}

func TestControlWalineUnknownAction(t *testing.T) {
	srv, _ := newTestServer(t, false)
	if err := srv.ControlWaline(context.Background(), "reload"); err == nil {
		t.Error("expected error for unknown action")
	}
	if err := srv.ControlWaline(context.Background(), "stop"); err != nil {
		t.Errorf("stop without a child should succeed, got %v", err)
	}
}

func TestServerStartSkipsUninitialized(t *testing.T) {
	srv, _ := newTestServer(t, false)
	srv.cfg.Waline.Autostart = true
	srv.Start(context.Background())
	if srv.Waline().GetDetail().StartCount != 0 {
		t.Error("waline should not start before init")
	}
}

func TestGetHealthz(t *testing.T) {
	srv, _ := newTestServer(t, false)
	h := srv.GetHealthz()
	if h.Status != "UP" || h.Version != "test" {
		t.Errorf("unexpected health %+v", h)
	}
	if h.Metrics.WalineStatus != models.StatusStopped || h.Metrics.RestoreRunning {
		t.Errorf("unexpected metrics %+v", h.Metrics)
	}
}
