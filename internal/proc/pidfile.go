package proc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

/**
 * PidFile 记录最近一次拉起的子进程PID
 * @property {string} path - 文件路径
 * @description
 * - 内容为十进制PID文本
 * - 文件不存在表示没有已知的子进程
 * - 文件存在只说明子进程可能存活，使用前必须探测
 */
type PidFile struct {
	path string
}

func NewPidFile(path string) *PidFile {
	return &PidFile{path: path}
}

func (p *PidFile) Path() string {
	return p.path
}

// Write 先写临时文件再rename，避免读到半截内容
func (p *PidFile) Write(pid int) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("create pid directory: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

/**
 * Read pid from file
 * @returns {int} Pid, 0 when the file doesn't exist
 * @returns {error} Returns error if the file exists but can't be parsed
 */
func (p *PidFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid file '%s': %q", p.path, string(data))
	}
	return pid, nil
}

func (p *PidFile) Exists() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// Remove 文件不存在不算错误
func (p *PidFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
