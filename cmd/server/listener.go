package server

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"

	"vanblog/internal/logger"
	"vanblog/internal/utils"
)

type ListenAddr struct {
	Network string
	Address string
}

/**
 * Test if the system supports Unix socket network type
 * @returns {bool} Returns true if Unix socket is supported, false otherwise
 * @description
 * - Always true on linux and darwin
 * - On windows a temporary socket is created and removed
 */
func IsUnixSocketSupported() bool {
	if runtime.GOOS != "windows" {
		return true
	}
	testSocketPath := filepath.Join(os.TempDir(), "test_unix_socket.sock")
	os.Remove(testSocketPath)

	listener, err := net.Listen("unix", testSocketPath)
	if err != nil {
		return false
	}
	listener.Close()
	os.Remove(testSocketPath)
	return true
}

/**
 * Create TCP and Unix socket listeners
 * @param {[]ListenAddr} addrs - Listener addresses
 * @returns {[]net.Listener} Created listeners
 * @returns {error} Last listener creation error
 * @description
 * - Stale socket files are removed before listening, live ones are left alone
 * - A failed address is logged and skipped, the others are still created
 */
func CreateListeners(addrs []ListenAddr) ([]net.Listener, error) {
	var listeners []net.Listener

	var lastErr error
	for _, addr := range addrs {
		if addr.Network == "unix" {
			if err := os.MkdirAll(filepath.Dir(addr.Address), 0755); err != nil {
				logger.Errorf("Failed to create socket directory: %v", err)
				lastErr = err
				continue
			}
			// 另一个keeper仍在使用该socket时不能删除
			if utils.IsAddressInUse("unix", addr.Address) {
				lastErr = fmt.Errorf("socket %s is in use by another process", addr.Address)
				logger.Errorf("%v", lastErr)
				continue
			}
			if err := os.Remove(addr.Address); err != nil && !os.IsNotExist(err) {
				logger.Errorf("Failed to remove existing socket file: %v", err)
				lastErr = err
				continue
			}
		}
		l, err := net.Listen(addr.Network, addr.Address)
		if err != nil {
			logger.Errorf("Failed to create listener on %s://%s: %v", addr.Network, addr.Address, err)
			lastErr = err
			continue
		}
		listeners = append(listeners, l)
	}
	return listeners, lastErr
}
