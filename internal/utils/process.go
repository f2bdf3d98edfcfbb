package utils

import (
	"errors"
	"time"
)

var ErrProcessNotFound = errors.New("process not found")

const probeInterval = 100 * time.Millisecond

/**
 * Wait until a process no longer exists
 * @param {int} pid - Process ID
 * @param {time.Duration} timeout - Upper bound of the wait
 * @returns {bool} Returns true if the process exited within timeout
 * @description
 * - Polls the zero-signal probe every 100ms
 * - Only suitable for processes we are not the parent of, a child must be reaped with Wait()
 */
func WaitProcessExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		running, err := IsProcessRunning(pid)
		if err == nil && !running {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(probeInterval)
	}
}
