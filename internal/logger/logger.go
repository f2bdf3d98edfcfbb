package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vanblog/internal/config"

	"github.com/juju/lumberjack/v2"
	"github.com/rs/zerolog"
)

var (
	defaultLogger *Logger
)

// Logger 日志结构体
type Logger struct {
	zl zerolog.Logger
}

// GetLogLevelFromString 将字符串转换为日志级别
func GetLogLevelFromString(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel // 默认级别
	}
}

// InitLogger 初始化日志系统，只输出到配置的位置
func InitLogger(cfg *config.LogConfig) {
	var output io.Writer = os.Stdout
	if cfg.Path != "console" && cfg.Path != "" {
		output = setupLogFileOutput(cfg.Path, cfg)
	}
	defaultLogger = newLogger(output, cfg.Level)
}

// InitLoggerWithMode 根据运行模式初始化日志系统
// isServerMode: true表示HTTP服务器模式，false表示CLI模式
func InitLoggerWithMode(cfg *config.LogConfig, isServerMode bool) {
	logPath := cfg.Path
	if logPath == "console" || logPath == "" {
		logPath = filepath.Join(config.App().Directory.Logs, "vanblog.log")
	}
	var output io.Writer = setupLogFileOutput(logPath, cfg)

	// 服务器模式同时输出到控制台
	if isServerMode {
		console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}
		output = zerolog.MultiLevelWriter(console, output)
	}
	defaultLogger = newLogger(output, cfg.Level)
}

func newLogger(output io.Writer, level string) *Logger {
	zl := zerolog.New(output).
		Level(GetLogLevelFromString(level)).
		With().Timestamp().
		Logger()
	return &Logger{zl: zl}
}

// setupLogFileOutput 设置日志文件输出，按大小滚动
func setupLogFileOutput(logPath string, cfg *config.LogConfig) io.Writer {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "创建日志目录失败: %v\n", err)
		return os.Stdout
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 50
	}
	return &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
}

/**
 * Get a logger tagged with a component name
 * @param {string} component - Component name written as the "component" field
 * @returns {*Logger} Returns child logger, writes nowhere if logging isn't initialized
 */
func Named(component string) *Logger {
	if defaultLogger == nil {
		return &Logger{zl: zerolog.Nop()}
	}
	return &Logger{zl: defaultLogger.zl.With().Str("component", component).Logger()}
}

func (l *Logger) Debugf(format string, v ...interface{}) { l.zl.Debug().Msgf(format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.zl.Info().Msgf(format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.zl.Warn().Msgf(format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.zl.Error().Msgf(format, v...) }

// Debug 输出调试日志
func Debug(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.zl.Debug().Msg(fmt.Sprint(v...))
	}
}

// Debugf 输出格式化调试日志
func Debugf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.zl.Debug().Msgf(format, v...)
	}
}

// Info 输出信息日志
func Info(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.zl.Info().Msg(fmt.Sprint(v...))
	}
}

// Infof 输出格式化信息日志
func Infof(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.zl.Info().Msgf(format, v...)
	}
}

// Warn 输出警告日志
func Warn(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.zl.Warn().Msg(fmt.Sprint(v...))
	}
}

// Warnf 输出格式化警告日志
func Warnf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.zl.Warn().Msgf(format, v...)
	}
}

// Error 输出错误日志
func Error(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.zl.Error().Msg(fmt.Sprint(v...))
	}
}

// Errorf 输出格式化错误日志
func Errorf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.zl.Error().Msgf(format, v...)
	}
}

// Fatal 输出致命错误日志并退出程序
func Fatal(v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.zl.Fatal().Msg(fmt.Sprint(v...))
		return
	}
	// 在日志系统未初始化时，使用标准错误输出
	fmt.Fprintf(os.Stderr, "FATAL: %v\n", fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf 输出格式化致命错误日志并退出程序
func Fatalf(format string, v ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.zl.Fatal().Msgf(format, v...)
		return
	}
	fmt.Fprintf(os.Stderr, "FATAL: "+format+"\n", v...)
	os.Exit(1)
}
