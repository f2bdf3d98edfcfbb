package services

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"vanblog/internal/config"
	"vanblog/internal/env"
	"vanblog/internal/logger"
	"vanblog/internal/models"

	"github.com/goccy/go-json"
)

// 设置键到评论服务环境变量的固定映射，按此顺序输出
var walineEnvTable = []struct {
	key models.SettingKey
	env string
}{
	{models.KeySMTPPort, "SMTP_PORT"},
	{models.KeySMTPHost, "SMTP_HOST"},
	{models.KeySMTPUser, "SMTP_USER"},
	{models.KeySenderName, "SENDER_NAME"},
	{models.KeySenderEmail, "SENDER_EMAIL"},
	{models.KeySMTPPassword, "SMTP_PASS"},
	{models.KeyAuthorEmail, "AUTHOR_EMAIL"},
	{models.KeyWebhook, "WEBHOOK"},
	{models.KeyForbiddenWords, "FORBIDDEN_WORDS"},
	{models.KeyIPQPS, "IPQPS"},
	{models.KeyAkismetKey, "AKISMET_KEY"},
}

// 邮件关闭时必须去掉的变量
var smtpEnvKeys = []string{
	"SMTP_PASS",
	"SMTP_USER",
	"SMTP_HOST",
	"SMTP_PORT",
	"SENDER_NAME",
	"SENDER_EMAIL",
}

type envRule struct {
	name  string
	apply func(setting models.WalineSetting, out *models.EnvMap)
}

// 查表之后按顺序执行，akismet退出规则在otherConfig之后，smtp规则最后
var walineEnvRules = []envRule{
	{"forceLogin", forceLoginRule},
	{"otherConfig", otherConfigRule},
	{"akismetOptOut", akismetOptOutRule},
	{"smtpGuard", smtpGuardRule},
}

/**
 * Map comment service settings to child environment variables
 * @param {models.WalineSetting} setting - Flat dotted settings record
 * @returns {*models.EnvMap} Ordered environment map, empty for nil settings
 * @description
 * - Pure function, same settings always produce the same map
 * - Recognized keys are translated through walineEnvTable
 * - Special keys are handled by walineEnvRules after the table
 */
func MapSettingsToEnv(setting models.WalineSetting) *models.EnvMap {
	out := models.NewEnvMap()
	if setting == nil {
		return out
	}
	for _, entry := range walineEnvTable {
		v, ok := setting.Get(entry.key)
		if !ok {
			continue
		}
		if s, ok := stringifySetting(v); ok {
			out.Set(entry.env, s)
		}
	}
	for _, rule := range walineEnvRules {
		rule.apply(setting, out)
	}
	return out
}

func forceLoginRule(setting models.WalineSetting, out *models.EnvMap) {
	if v, _ := setting.Get(models.KeyForceLoginComment); isTruthy(v) {
		out.Set("LOGIN", "force")
	}
}

func otherConfigRule(setting models.WalineSetting, out *models.EnvMap) {
	v, ok := setting.Get(models.KeyOtherConfig)
	if !ok || !isTruthy(v) {
		return
	}
	var extra map[string]any
	switch raw := v.(type) {
	case string:
		if err := json.Unmarshal([]byte(raw), &extra); err != nil {
			logger.Named("waline").Warnf("ignore malformed otherConfig: %v", err)
			return
		}
	case map[string]any:
		extra = raw
	default:
		return
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := stringifySetting(extra[k]); ok {
			out.Set(k, s)
		}
	}
}

// 明确关闭akismet时覆盖残留的key
func akismetOptOutRule(setting models.WalineSetting, out *models.EnvMap) {
	if v, ok := setting.Get(models.KeyAkismetEnabled); ok {
		if b, isBool := v.(bool); isBool && !b {
			out.Set("AKISMET_KEY", "false")
		}
	}
}

func smtpGuardRule(setting models.WalineSetting, out *models.EnvMap) {
	if v, _ := setting.Get(models.KeySMTPEnabled); isTruthy(v) {
		return
	}
	for _, k := range smtpEnvKeys {
		out.Delete(k)
	}
}

// stringifySetting nil不输出，数字不使用科学计数法，对象编码为JSON
func stringifySetting(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10), true
		}
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	case fmt.Stringer:
		return val.String(), true
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val), true
		}
		return string(data), true
	}
}

func isTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != "" && val != "false" && val != "0"
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}

// walineEnvSource 计算环境变量所需的站点信息与设置
type walineEnvSource interface {
	GetSiteInfo() (*models.SiteInfo, error)
	GetWalineSetting() (models.WalineSetting, error)
}

/**
 * Build the full environment of the comment service
 * @param {config.DatabaseConfig} db - Database configuration, connection parts become MONGO_*
 * @param {walineEnvSource} src - Site info and comment settings
 * @param {string} secret - Token secret
 * @returns {*models.EnvMap} Mongo variables, site variables, then mapped settings
 * @description
 * - In development a docker host named "mongo" or an empty host maps to 127.0.0.1
 * - AKISMET_KEY defaults to "false" when nothing set it
 */
func LoadWalineEnv(db config.DatabaseConfig, src walineEnvSource, secret string) (*models.EnvMap, error) {
	out := models.NewEnvMap()

	u, err := url.Parse(db.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	host := u.Hostname()
	if env.IsDevelopment() && (host == "mongo" || host == "") {
		host = "127.0.0.1"
	}
	password, _ := u.User.Password()
	out.Set("MONGO_HOST", host)
	out.Set("MONGO_PORT", u.Port())
	out.Set("MONGO_USER", u.User.Username())
	out.Set("MONGO_PASSWORD", password)
	out.Set("MONGO_DB", db.WalineDB)
	out.Set("MONGO_AUTHSOURCE", "admin")

	site, err := src.GetSiteInfo()
	if err != nil {
		return nil, fmt.Errorf("load site info: %w", err)
	}
	if site != nil && site.SiteName != "" {
		out.Set("SITE_NAME", site.SiteName)
	}
	if site != nil && site.BaseURL != "" {
		out.Set("SITE_URL", site.BaseURL)
	}
	out.Set("JWT_TOKEN", secret)

	setting, err := src.GetWalineSetting()
	if err != nil {
		return nil, fmt.Errorf("load waline setting: %w", err)
	}
	out.Merge(MapSettingsToEnv(setting))

	if v, _ := out.Get("AKISMET_KEY"); v == "" {
		out.Set("AKISMET_KEY", "false")
	}
	return out, nil
}

var secretEnvKeys = map[string]bool{
	"SMTP_PASS":      true,
	"MONGO_PASSWORD": true,
	"JWT_TOKEN":      true,
}

// MaskEnv 隐藏口令类变量，用于日志与接口输出
func MaskEnv(m *models.EnvMap) map[string]string {
	out := m.Map()
	for k, v := range out {
		if v == "" {
			continue
		}
		if secretEnvKeys[k] || (k == "AKISMET_KEY" && v != "false") || strings.Contains(k, "SECRET") {
			out[k] = "******"
		}
	}
	return out
}
