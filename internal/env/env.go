package env

import (
	"os"
	"path/filepath"
)

var Daemon bool = false
var ListenPort int = 0

// (default: %USERPROFILE%/.vanblog on Windows, $HOME/.vanblog on Linux)
var VanblogDir string = GetVanblogDir()

/**
 * Get vanblog working directory path
 * @returns {string} Returns vanblog directory path
 * @description
 * - VANBLOG_HOME overrides the default location
 */
func GetVanblogDir() string {
	if dir := os.Getenv("VANBLOG_HOME"); dir != "" {
		return dir
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".vanblog")
}

// IsDevelopment reports whether the keeper runs in development mode
func IsDevelopment() bool {
	return os.Getenv("VANBLOG_ENV") == "development"
}
