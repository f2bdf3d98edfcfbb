//go:build windows

package utils

import (
	"fmt"
	"os/exec"
	"strconv"
	"syscall"
	"unsafe"
)

// Windows API 常量和类型定义
const (
	PROCESS_QUERY_INFORMATION = 0x0400
	PROCESS_TERMINATE         = 0x0001
	STILL_ACTIVE              = 259 // 进程仍在运行的标志
)

var (
	kernel32               = syscall.NewLazyDLL("kernel32.dll")
	procOpenProcess        = kernel32.NewProc("OpenProcess")
	procCloseHandle        = kernel32.NewProc("CloseHandle")
	procTerminateProcess   = kernel32.NewProc("TerminateProcess")
	procGetExitCodeProcess = kernel32.NewProc("GetExitCodeProcess")
)

// SetNewPG 设置进程属性，使子进程在父进程退出后继续运行
// Windows系统实现
func SetNewPG(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

// TerminateProcessGroup Windows没有SIGTERM，用taskkill /T请求进程树退出
func TerminateProcessGroup(pid int) error {
	running, _ := IsProcessRunning(pid)
	if !running {
		return ErrProcessNotFound
	}
	return exec.Command("taskkill", "/T", "/PID", strconv.Itoa(pid)).Run()
}

// KillProcessGroup 强制结束进程
func KillProcessGroup(pid int) error {
	// 打开进程句柄
	handle, _, err := procOpenProcess.Call(
		uintptr(PROCESS_TERMINATE),
		uintptr(0),
		uintptr(pid),
	)
	if handle == 0 {
		return fmt.Errorf("failed to open process with PID %d: %v", pid, err)
	}
	defer procCloseHandle.Call(handle)

	ret, _, err := procTerminateProcess.Call(handle, uintptr(1))
	if ret == 0 {
		return fmt.Errorf("failed to terminate process with PID %d: %v", pid, err)
	}
	return nil
}

// IsProcessRunning 检查进程是否正在运行 使用 GetExitCodeProcess 检查进程是否正在运行
func IsProcessRunning(pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}
	handle, _, _ := procOpenProcess.Call(
		uintptr(PROCESS_QUERY_INFORMATION),
		uintptr(0),
		uintptr(pid),
	)
	if handle == 0 {
		// 如果无法打开进程句柄，通常表示进程不存在
		return false, nil
	}
	defer procCloseHandle.Call(handle)

	var exitCode uint32
	ret, _, err := procGetExitCodeProcess.Call(
		handle,
		uintptr(unsafe.Pointer(&exitCode)),
	)
	if ret == 0 {
		return false, fmt.Errorf("failed to get exit code for process with PID %d: %v", pid, err)
	}
	return exitCode == STILL_ACTIVE, nil
}
