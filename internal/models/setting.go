package models

import "sort"

// SettingKey 评论服务设置中可识别的键
type SettingKey string

const (
	KeySMTPEnabled       SettingKey = "smtp.enabled"
	KeySMTPPort          SettingKey = "smtp.port"
	KeySMTPHost          SettingKey = "smtp.host"
	KeySMTPUser          SettingKey = "smtp.user"
	KeySMTPPassword      SettingKey = "smtp.password"
	KeySenderName        SettingKey = "sender.name"
	KeySenderEmail       SettingKey = "sender.email"
	KeyAuthorEmail       SettingKey = "authorEmail"
	KeyWebhook           SettingKey = "webhook"
	KeyForceLoginComment SettingKey = "forceLoginComment"
	KeyForbiddenWords    SettingKey = "forbidden.words"
	KeyIPQPS             SettingKey = "ipqps"
	KeyAkismetEnabled    SettingKey = "akismet.enabled"
	KeyAkismetKey        SettingKey = "akismet.key"
	KeyOtherConfig       SettingKey = "otherConfig"
)

// WalineSetting 评论服务设置，扁平的点分键值
type WalineSetting map[string]any

/**
 * Get value of a recognized setting key
 * @param {SettingKey} key - Setting key
 * @returns {any} Value, nil when absent
 * @returns {bool} Whether the key exists
 */
func (s WalineSetting) Get(key SettingKey) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s[string(key)]
	return v, ok
}

/**
 * Ordered environment variable map
 * @description
 * - Keeps first-insertion order, overwriting a key keeps its position
 * - Built per start, never persisted
 */
type EnvMap struct {
	keys   []string
	values map[string]string
}

func NewEnvMap() *EnvMap {
	return &EnvMap{values: make(map[string]string)}
}

func (m *EnvMap) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *EnvMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *EnvMap) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

func (m *EnvMap) Len() int {
	return len(m.keys)
}

func (m *EnvMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Merge 按other的顺序写入全部键值
func (m *EnvMap) Merge(other *EnvMap) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		m.Set(k, other.values[k])
	}
}

// Environ 转换为KEY=VALUE形式，可直接追加到exec.Cmd.Env
func (m *EnvMap) Environ() []string {
	out := make([]string, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, k+"="+m.values[k])
	}
	return out
}

// Map 返回普通map副本，便于序列化输出
func (m *EnvMap) Map() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// SortedKeys 用于日志输出时的稳定顺序
func (m *EnvMap) SortedKeys() []string {
	keys := m.Keys()
	sort.Strings(keys)
	return keys
}
