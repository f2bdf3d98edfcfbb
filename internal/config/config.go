package config

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"vanblog/internal/env"

	"github.com/spf13/viper"
)

/**
 * Server configuration parameters
 * @property {string} address - Server listening address (e.g. ":3000")
 * @property {string} mode - Application mode (debug/release/test)
 * @property {string} socket - Unix socket path used by the command line client
 */
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"`
	Socket  string `mapstructure:"socket"`
}

/**
 * Logging configuration
 * @property {string} level - Log level (debug/info/warn/error)
 * @property {string} path - Log file path
 * @property {int} maxSize - Max size in megabytes before the file is rotated
 * @property {int} maxBackups - Number of rotated files to keep
 */
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type DirectoryConfig struct {
	Logs string `mapstructure:"logs"`
	Data string `mapstructure:"data"`
}

/**
 * Document store configuration
 * @property {string} driver - mongo/badger/memory
 * @property {string} url - Mongo connection url, also handed to the comment service
 * @property {string} name - Database holding blog data
 * @property {string} walineDB - Database holding comment documents
 * @property {string} badgerDir - Data directory of the embedded store
 */
type DatabaseConfig struct {
	Driver    string        `mapstructure:"driver"`
	URL       string        `mapstructure:"url"`
	Name      string        `mapstructure:"name"`
	WalineDB  string        `mapstructure:"waline_db"`
	BadgerDir string        `mapstructure:"badger_dir"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

/**
 * Comment service (waline) process configuration
 * @property {string} command - Interpreter used to run the entry script
 * @property {[]string} args - Argument templates, {{.Entry}} and {{.WorkDir}} are substituted
 * @property {string} entry - Entry script, tried before the fallback install locations
 * @property {string} workDir - Working directory of the child
 * @property {string} pidFile - Pid file path, defaults to <logs>/waline.pid
 * @property {Duration} stopTimeout - Graceful termination timeout
 * @property {Duration} killTimeout - Wait after the forceful signal
 * @property {bool} autostart - Start the comment service together with the server
 */
type WalineConfig struct {
	Command     string        `mapstructure:"command"`
	Args        []string      `mapstructure:"args"`
	Entry       string        `mapstructure:"entry"`
	WorkDir     string        `mapstructure:"work_dir"`
	PidFile     string        `mapstructure:"pid_file"`
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
	KillTimeout time.Duration `mapstructure:"kill_timeout"`
	Autostart   bool          `mapstructure:"autostart"`
}

type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Waline    WalineConfig    `mapstructure:"waline"`
	Demo      bool            `mapstructure:"demo"`
	JwtSecret string          `mapstructure:"jwt_secret"`
}

/**
 * Load application configuration from YAML file
 * @description
 * - Looks for config.yaml in the working directory and the vanblog directory
 * - Environment variables prefixed with VANBLOG_ override file values,
 *   e.g. VANBLOG_DATABASE_URL overrides database.url
 */
func LoadConfig() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(env.VanblogDir)
	v.SetEnvPrefix("VANBLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return collectConfig(&cfg), nil
}

// 未出现在配置文件中的键需要默认值，AutomaticEnv才能覆盖到它们
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.url", "mongodb://127.0.0.1:27017/")
	v.SetDefault("database.name", "vanBlog")
	v.SetDefault("database.waline_db", "waline")
	v.SetDefault("database.timeout", 10*time.Second)
	v.SetDefault("waline.command", "node")
	v.SetDefault("waline.stop_timeout", 5*time.Second)
	v.SetDefault("waline.kill_timeout", 2*time.Second)
	v.SetDefault("waline.autostart", true)
	v.SetDefault("demo", false)
}

var (
	Config AppConfig
	mu     sync.RWMutex
)

func collectConfig(cfg *AppConfig) *AppConfig {
	if cfg.Directory.Logs == "" {
		cfg.Directory.Logs = filepath.Join(env.VanblogDir, "logs")
	}
	if cfg.Directory.Data == "" {
		cfg.Directory.Data = filepath.Join(env.VanblogDir, "data")
	}
	if cfg.Server.Socket == "" {
		cfg.Server.Socket = filepath.Join(env.VanblogDir, "run", "vanblog.sock")
	}
	if cfg.Database.BadgerDir == "" {
		cfg.Database.BadgerDir = filepath.Join(cfg.Directory.Data, "badger")
	}
	if cfg.Waline.PidFile == "" {
		cfg.Waline.PidFile = filepath.Join(cfg.Directory.Logs, "waline.pid")
	}
	if cfg.Waline.Command == "" {
		cfg.Waline.Command = "node"
	}
	if cfg.Waline.StopTimeout <= 0 {
		cfg.Waline.StopTimeout = 5 * time.Second
	}
	if cfg.Waline.KillTimeout <= 0 {
		cfg.Waline.KillTimeout = 2 * time.Second
	}
	return cfg
}

/**
 * Get a copy of the current application configuration
 */
func App() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return Config
}

/**
 * Reload configuration file
 * @returns {error} Returns error if the file can't be parsed
 * @description
 * - Running processes keep their settings, new values apply on next (re)start
 */
func ReloadConfig() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	mu.Lock()
	Config = *cfg
	mu.Unlock()
	return nil
}

func init() {
	cfg, err := LoadConfig()
	if err == nil {
		Config = *cfg
		return
	}
	collectConfig(&Config)
}
