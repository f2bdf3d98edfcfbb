package services

import (
	"testing"

	"vanblog/internal/config"
	"vanblog/internal/models"
)

func TestMapSettingsToEnvSMTPDisabled(t *testing.T) {
	env := MapSettingsToEnv(models.WalineSetting{
		"smtp.enabled":  false,
		"smtp.host":     "mail.x.com",
		"smtp.port":     465,
		"smtp.user":     "me",
		"smtp.password": "secret",
		"sender.name":   "blog",
		"sender.email":  "blog@x.com",
		"authorEmail":   "me@x.com",
	})
	for _, k := range smtpEnvKeys {
		if _, ok := env.Get(k); ok {
			t.Errorf("%s should be stripped when smtp is disabled", k)
		}
	}
	if v, _ := env.Get("AUTHOR_EMAIL"); v != "me@x.com" {
		t.Errorf("AUTHOR_EMAIL should survive, got %q", v)
	}

	// 未设置smtp.enabled同样视为关闭
	env = MapSettingsToEnv(models.WalineSetting{"smtp.host": "mail.x.com"})
	if _, ok := env.Get("SMTP_HOST"); ok {
		t.Error("SMTP_HOST should be stripped when smtp.enabled is absent")
	}
}

func TestMapSettingsToEnvAkismetOptOut(t *testing.T) {
	env := MapSettingsToEnv(models.WalineSetting{
		"akismet.enabled": false,
		"akismet.key":     "leftover-key",
	})
	if v, _ := env.Get("AKISMET_KEY"); v != "false" {
		t.Errorf("expected AKISMET_KEY=false, got %q", v)
	}

	env = MapSettingsToEnv(models.WalineSetting{
		"akismet.enabled": true,
		"akismet.key":     "real-key",
	})
	if v, _ := env.Get("AKISMET_KEY"); v != "real-key" {
		t.Errorf("expected configured key, got %q", v)
	}
}

func TestMapSettingsToEnvOtherConfig(t *testing.T) {
	env := MapSettingsToEnv(models.WalineSetting{"otherConfig": `{"FOO":"bar","LEVEL":3}`})
	if v, _ := env.Get("FOO"); v != "bar" {
		t.Errorf("expected FOO=bar, got %q", v)
	}
	if v, _ := env.Get("LEVEL"); v != "3" {
		t.Errorf("expected LEVEL=3, got %q", v)
	}

	env = MapSettingsToEnv(models.WalineSetting{"otherConfig": `{"FOO":`})
	if env.Len() != 0 {
		t.Errorf("malformed otherConfig should add nothing, got %v", env.Map())
	}
}

func TestMapSettingsToEnvScenario(t *testing.T) {
	env := MapSettingsToEnv(models.WalineSetting{
		"smtp.enabled":    true,
		"smtp.host":       "mail.x.com",
		"akismet.enabled": false,
	})
	if v, _ := env.Get("SMTP_HOST"); v != "mail.x.com" {
		t.Errorf("expected SMTP_HOST=mail.x.com, got %q", v)
	}
	if v, _ := env.Get("AKISMET_KEY"); v != "false" {
		t.Errorf("expected AKISMET_KEY=false, got %q", v)
	}
}

func TestMapSettingsToEnvForceLogin(t *testing.T) {
	env := MapSettingsToEnv(models.WalineSetting{"forceLoginComment": true, "ipqps": 60})
	if v, _ := env.Get("LOGIN"); v != "force" {
		t.Errorf("expected LOGIN=force, got %q", v)
	}
	if v, _ := env.Get("IPQPS"); v != "60" {
		t.Errorf("expected IPQPS=60, got %q", v)
	}

	env = MapSettingsToEnv(models.WalineSetting{"forceLoginComment": false})
	if _, ok := env.Get("LOGIN"); ok {
		t.Error("LOGIN should be absent when forceLoginComment is false")
	}

	if MapSettingsToEnv(nil).Len() != 0 {
		t.Error("nil settings should map to an empty env")
	}
}

func TestMapSettingsToEnvDeterministic(t *testing.T) {
	setting := models.WalineSetting{
		"smtp.enabled": true,
		"smtp.host":    "mail.x.com",
		"smtp.port":    25,
		"webhook":      "https://hook",
		"otherConfig":  `{"B":"2","A":"1"}`,
	}
	first := MapSettingsToEnv(setting).Environ()
	for i := 0; i < 10; i++ {
		again := MapSettingsToEnv(setting).Environ()
		if len(again) != len(first) {
			t.Fatalf("length changed: %v vs %v", first, again)
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("order changed: %v vs %v", first, again)
			}
		}
	}
}

type fakeEnvSource struct {
	site    *models.SiteInfo
	setting models.WalineSetting
}

func (f *fakeEnvSource) GetSiteInfo() (*models.SiteInfo, error)          { return f.site, nil }
func (f *fakeEnvSource) GetWalineSetting() (models.WalineSetting, error) { return f.setting, nil }

func TestLoadWalineEnv(t *testing.T) {
	db := config.DatabaseConfig{
		URL:      "mongodb://admin:pw@db.local:27017/",
		WalineDB: "waline",
	}
	src := &fakeEnvSource{
		site:    &models.SiteInfo{SiteName: "Blog", BaseURL: "https://blog.x.com"},
		setting: models.WalineSetting{"webhook": "https://hook"},
	}
	env, err := LoadWalineEnv(db, src, "token")
	if err != nil {
		t.Fatalf("LoadWalineEnv: %v", err)
	}
	want := map[string]string{
		"MONGO_HOST":       "db.local",
		"MONGO_PORT":       "27017",
		"MONGO_USER":       "admin",
		"MONGO_PASSWORD":   "pw",
		"MONGO_DB":         "waline",
		"MONGO_AUTHSOURCE": "admin",
		"SITE_NAME":        "Blog",
		"SITE_URL":         "https://blog.x.com",
		"JWT_TOKEN":        "token",
		"WEBHOOK":          "https://hook",
		"AKISMET_KEY":      "false",
	}
	for k, v := range want {
		if got, _ := env.Get(k); got != v {
			t.Errorf("%s: expected %q, got %q", k, v, got)
		}
	}

	masked := MaskEnv(env)
	if masked["MONGO_PASSWORD"] == "pw" || masked["JWT_TOKEN"] == "token" {
		t.Errorf("secrets should be masked: %v", masked)
	}
	if masked["AKISMET_KEY"] != "false" {
		t.Errorf("opt-out value should stay visible")
	}
}

func TestLoadWalineEnvDevelopmentHost(t *testing.T) {
	t.Setenv("VANBLOG_ENV", "development")
	env, err := LoadWalineEnv(config.DatabaseConfig{URL: "mongodb://mongo:27017/"}, &fakeEnvSource{}, "token")
	if err != nil {
		t.Fatalf("LoadWalineEnv: %v", err)
	}
	if v, _ := env.Get("MONGO_HOST"); v != "127.0.0.1" {
		t.Errorf("expected 127.0.0.1 in development, got %q", v)
	}
	if _, ok := env.Get("SITE_NAME"); ok {
		t.Error("SITE_NAME should be absent without site info")
	}
}
