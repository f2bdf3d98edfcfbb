package services

import "errors"

var (
	// ErrBusy 同类操作正在进行，第二个调用方直接拒绝，不排队
	ErrBusy = errors.New("another operation is in progress")
	// ErrAlreadyInitialized 系统已经初始化
	ErrAlreadyInitialized = errors.New("system already initialized")
	// ErrDemoMode 演示站禁止修改数据
	ErrDemoMode = errors.New("operation not allowed in demo mode")
	// ErrEntryNotFound 所有候选位置都找不到评论服务入口脚本
	ErrEntryNotFound = errors.New("waline entry script not found")
	// ErrInvalidBackup 备份文件不是合法的JSON对象
	ErrInvalidBackup = errors.New("invalid backup")
)
