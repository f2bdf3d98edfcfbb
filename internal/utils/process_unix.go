//go:build !windows

package utils

import (
	"errors"
	"os/exec"
	"syscall"
)

// SetNewPG 设置进程属性，子进程成为新进程组的组长，终止信号发给整个进程组
func SetNewPG(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

/**
 * Check whether a process is alive with the zero signal
 * @param {int} pid - Process ID
 * @returns {bool} Returns true if the process exists
 * @description
 * - EPERM means the process exists but belongs to another user, treated as alive
 * - ESRCH means no such process
 */
func IsProcessRunning(pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}
	err := syscall.Kill(pid, syscall.Signal(0))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, syscall.EPERM) {
		return true, nil
	}
	if errors.Is(err, syscall.ESRCH) {
		return false, nil
	}
	return false, err
}

// TerminateProcessGroup 向进程组发送SIGTERM，进程不是组长时退化为只发给该进程
func TerminateProcessGroup(pid int) error {
	return signalGroup(pid, syscall.SIGTERM)
}

// KillProcessGroup 向进程组发送SIGKILL
func KillProcessGroup(pid int) error {
	return signalGroup(pid, syscall.SIGKILL)
}

func signalGroup(pid int, sig syscall.Signal) error {
	pgid, err := syscall.Getpgid(pid)
	if err == nil && pgid == pid {
		if err := syscall.Kill(-pgid, sig); err == nil || !errors.Is(err, syscall.ESRCH) {
			return err
		}
	}
	err = syscall.Kill(pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return ErrProcessNotFound
	}
	return err
}
