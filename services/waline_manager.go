package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"vanblog/internal/config"
	"vanblog/internal/logger"
	"vanblog/internal/models"
	"vanblog/internal/proc"
	"vanblog/internal/utils"
)

const (
	walineTitle        = "waline"
	walinePackageEntry = "@waline/vercel/vanilla.js"

	// 评论服务未安装可选依赖时会持续输出这一行，忽略
	walineNoiseLine = "Cannot find module"
)

// processSignaler 对外部进程(非自身子进程)的探测与信号操作
type processSignaler interface {
	IsRunning(pid int) (bool, error)
	Terminate(pid int) error
	Kill(pid int) error
	WaitExit(pid int, timeout time.Duration) bool
}

type osSignaler struct{}

func (osSignaler) IsRunning(pid int) (bool, error) { return utils.IsProcessRunning(pid) }
func (osSignaler) Terminate(pid int) error         { return utils.TerminateProcessGroup(pid) }
func (osSignaler) Kill(pid int) error              { return utils.KillProcessGroup(pid) }
func (osSignaler) WaitExit(pid int, timeout time.Duration) bool {
	return utils.WaitProcessExit(pid, timeout)
}

/**
 * WalineManager 评论服务子进程的监管者
 * @property {config.WalineConfig} cfg - 进程配置
 * @property {config.DatabaseConfig} db - 数据库配置，用于计算MONGO_*变量
 * @property {proc.PidFile} pidFile - 持久化的PID文件，用于发现崩溃后遗留的进程
 * @description
 * - 状态: stopped -> starting -> running -> stopping -> stopped
 * - 意外退出直接回到stopped，并清除句柄和PID文件
 * - Start/Stop/Restart不做排队，调用方负责串行化
 * - mutex只用于和退出监测协程之间保持数据一致
 */
type WalineManager struct {
	cfg     config.WalineConfig
	db      config.DatabaseConfig
	source  walineEnvSource
	pidFile *proc.PidFile
	log     *logger.Logger
	signal  processSignaler
	secret  func() string
	lookup  func() (string, error)

	mutex          sync.Mutex
	status         models.RunStatus
	child          *proc.Child
	command        string
	args           []string
	workDir        string
	startCount     int
	lastExitTime   time.Time
	lastExitReason string
	env            *models.EnvMap
}

func NewWalineManager(cfg config.WalineConfig, db config.DatabaseConfig, source walineEnvSource) *WalineManager {
	return &WalineManager{
		cfg:     cfg,
		db:      db,
		source:  source,
		pidFile: proc.NewPidFile(cfg.PidFile),
		log:     logger.Named(walineTitle),
		signal:  osSignaler{},
		secret:  JwtSecret,
		lookup:  npmGlobalRoot,
		status:  models.StatusStopped,
	}
}

func (m *WalineManager) Status() models.RunStatus {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.status
}

func (m *WalineManager) IsRunning() bool {
	return m.Status() == models.StatusRunning
}

func (m *WalineManager) GetDetail() models.ProcessDetail {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	detail := models.ProcessDetail{
		Title:          walineTitle,
		Command:        m.command,
		Args:           m.args,
		WorkDir:        m.workDir,
		PidFile:        m.pidFile.Path(),
		Status:         m.status,
		StartCount:     m.startCount,
		LastExitTime:   m.lastExitTime,
		LastExitReason: m.lastExitReason,
	}
	if m.child != nil {
		detail.Pid = m.child.Pid()
		detail.StartTime = m.child.StartTime
	}
	return detail
}

// Env 最近一次启动时计算出的环境变量，未启动过返回nil
func (m *WalineManager) Env() *models.EnvMap {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.env
}

// LoadEnv 按当前设置重新计算环境变量
func (m *WalineManager) LoadEnv() (*models.EnvMap, error) {
	return LoadWalineEnv(m.db, m.source, m.secret())
}

func (m *WalineManager) hasChild() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.child != nil
}

func (m *WalineManager) setStatus(status models.RunStatus) {
	m.mutex.Lock()
	m.status = status
	m.mutex.Unlock()
}

/**
 * Start the comment service
 * @param {context.Context} ctx - Checked before spawning
 * @returns {error} Returns error if env can't be computed, an old child or orphan survives, or spawn fails
 * @description
 * - An existing handle is stopped first, once, then start continues
 * - Environment is recomputed from current settings on every start
 * - A process recorded in the pid file is reaped before spawning
 * - Pid file is written after a successful spawn
 */
func (m *WalineManager) Start(ctx context.Context) error {
	if m.hasChild() {
		m.log.Warnf("Start called while a child is supervised, stopping it first")
		if err := m.Stop(); err != nil {
			walineStarts.WithLabelValues("error").Inc()
			return fmt.Errorf("stop previous waline: %w", err)
		}
	}
	m.setStatus(models.StatusStarting)

	err := m.start(ctx)
	if err != nil {
		m.setStatus(models.StatusStopped)
		walineStarts.WithLabelValues("error").Inc()
		m.log.Errorf("Waline start failed: %v", err)
		return err
	}
	walineStarts.WithLabelValues("success").Inc()
	return nil
}

func (m *WalineManager) start(ctx context.Context) error {
	envMap, err := m.LoadEnv()
	if err != nil {
		return err
	}
	m.log.Infof("Waline env: %v", MaskEnv(envMap))

	if err := m.reapOrphan(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	workDir := m.cfg.WorkDir
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	entry, err := m.resolveEntry(workDir)
	if err != nil {
		return err
	}
	args := m.cfg.Args
	if len(args) == 0 {
		args = []string{"{{.Entry}}"}
	}
	command, args, err := utils.GetCommandLine(m.cfg.Command, args, map[string]string{
		"Entry":   entry,
		"WorkDir": workDir,
	})
	if err != nil {
		return err
	}

	stdout := proc.NewLineWriter(func(line string) {
		if !strings.Contains(line, walineNoiseLine) {
			m.log.Infof("%s", line)
		}
	})
	stderr := proc.NewLineWriter(func(line string) {
		m.log.Errorf("%s", line)
	})
	child, err := proc.StartChild(proc.ProcessSpec{
		Title:   walineTitle,
		Command: command,
		Args:    args,
		WorkDir: workDir,
		Env:     append(os.Environ(), envMap.Environ()...),
		Stdout:  stdout,
		Stderr:  stderr,
	})
	if err != nil {
		return err
	}
	if err := m.pidFile.Write(child.Pid()); err != nil {
		m.log.Warnf("Failed to write pid file: %v", err)
	}

	m.mutex.Lock()
	m.child = child
	m.status = models.StatusRunning
	m.command = command
	m.args = args
	m.workDir = workDir
	m.startCount++
	m.env = envMap
	m.mutex.Unlock()
	walineUp.Set(1)

	go m.watch(child, stdout, stderr)
	m.log.Infof("Waline started (PID: %d)", child.Pid())
	return nil
}

/**
 * watch 监测子进程退出
 * @description
 * - 由Stop发起的退出交给Stop清理
 * - 其它退出视为意外退出，清除句柄并删除PID文件
 */
func (m *WalineManager) watch(child *proc.Child, outputs ...*proc.LineWriter) {
	<-child.Done()
	for _, w := range outputs {
		w.Flush()
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.child != child || m.status == models.StatusStopping {
		return
	}
	m.child = nil
	m.status = models.StatusStopped
	m.lastExitTime = time.Now()
	m.lastExitReason = child.ExitReason()
	if err := m.pidFile.Remove(); err != nil {
		m.log.Warnf("Failed to remove pid file: %v", err)
	}
	walineExits.Inc()
	walineUp.Set(0)
	m.log.Warnf("Waline process (PID: %d) %s", child.Pid(), m.lastExitReason)
}

/**
 * Stop the comment service
 * @returns {error} Returns error if the process is still alive after the forceful signal
 * @description
 * - Without a handle, falls back to reaping the process recorded in the pid file
 * - With a handle, sends the graceful signal and waits stop_timeout, then escalates
 * - Pid file and handle are cleared unconditionally
 */
func (m *WalineManager) Stop() error {
	m.mutex.Lock()
	child := m.child
	if child == nil {
		m.mutex.Unlock()
		return m.reapOrphan()
	}
	m.status = models.StatusStopping
	m.mutex.Unlock()

	pid := child.Pid()
	var stopErr error
	if err := m.signal.Terminate(pid); err != nil && !errors.Is(err, utils.ErrProcessNotFound) {
		m.log.Warnf("Failed to send terminate signal to %d: %v", pid, err)
	}
	if !child.WaitExit(m.cfg.StopTimeout) {
		m.log.Warnf("Waline (PID: %d) didn't exit in %v, killing", pid, m.cfg.StopTimeout)
		if err := m.signal.Kill(pid); err != nil && !errors.Is(err, utils.ErrProcessNotFound) {
			m.log.Errorf("Failed to kill %d: %v", pid, err)
		}
		if !child.WaitExit(m.cfg.KillTimeout) {
			stopErr = fmt.Errorf("waline process %d still alive after kill", pid)
		}
	}

	if err := m.pidFile.Remove(); err != nil {
		m.log.Warnf("Failed to remove pid file: %v", err)
	}
	m.mutex.Lock()
	if m.child == child {
		m.child = nil
	}
	m.status = models.StatusStopped
	m.lastExitTime = time.Now()
	m.lastExitReason = "stopped by keeper"
	m.mutex.Unlock()
	walineUp.Set(0)

	if stopErr != nil {
		return stopErr
	}
	m.log.Infof("Waline stopped (PID: %d)", pid)
	return nil
}

/**
 * Restart the comment service
 * @param {context.Context} ctx - Values are kept, cancellation is ignored once the restart begins
 * @param {string} reason - Logged reason of the restart
 * @description
 * - Start stops the current child first, a child that survives the kill aborts the restart
 */
func (m *WalineManager) Restart(ctx context.Context, reason string) error {
	m.log.Infof("Restarting waline: %s", reason)
	// 已经停掉的服务必须重新拉起，调用方断开也不能中止
	return m.Start(context.WithoutCancel(ctx))
}

/**
 * reapOrphan 清理PID文件记录的遗留进程
 * @returns {error} 遗留进程强制终止后仍然存活时返回错误
 * @description
 * - 文件不存在直接返回
 * - 进程已不存在时不发送任何信号
 * - 无论结果如何都删除PID文件
 */
func (m *WalineManager) reapOrphan() error {
	pid, err := m.pidFile.Read()
	if err != nil {
		m.log.Warnf("Discard unreadable pid file: %v", err)
		return m.pidFile.Remove()
	}
	if pid == 0 {
		return nil
	}
	defer func() {
		if err := m.pidFile.Remove(); err != nil {
			m.log.Warnf("Failed to remove pid file: %v", err)
		}
	}()

	if pid == os.Getpid() {
		return nil
	}
	running, err := m.signal.IsRunning(pid)
	if err != nil || !running {
		m.log.Infof("Stale pid file, process %d is gone", pid)
		return nil
	}

	walineOrphans.Inc()
	m.log.Warnf("Found orphaned waline process (PID: %d), terminating", pid)
	err = m.signal.Terminate(pid)
	switch {
	case errors.Is(err, utils.ErrProcessNotFound):
		return nil
	case err != nil:
		m.log.Warnf("Failed to send terminate signal to orphan %d: %v", pid, err)
	case m.signal.WaitExit(pid, m.cfg.StopTimeout):
		return nil
	default:
		m.log.Warnf("Orphan %d didn't exit in %v, killing", pid, m.cfg.StopTimeout)
	}
	if err := m.signal.Kill(pid); err != nil && !errors.Is(err, utils.ErrProcessNotFound) {
		m.log.Errorf("Failed to kill orphan %d: %v", pid, err)
	}
	if !m.signal.WaitExit(pid, m.cfg.KillTimeout) {
		return fmt.Errorf("orphaned waline process %d still alive after kill", pid)
	}
	return nil
}

/**
 * resolveEntry 查找评论服务入口脚本
 * @description
 * - 依次尝试: 配置的路径、工作目录下的node_modules、npm全局目录
 * - 每个失败的候选都记录日志
 */
func (m *WalineManager) resolveEntry(workDir string) (string, error) {
	var candidates []string
	if m.cfg.Entry != "" {
		candidates = append(candidates, m.cfg.Entry)
	}
	candidates = append(candidates, filepath.Join(workDir, "node_modules", walinePackageEntry))
	for _, c := range candidates {
		if fileExists(c) {
			return c, nil
		}
		m.log.Warnf("Waline entry not found at %s", c)
	}

	if m.lookup != nil {
		root, err := m.lookup()
		if err != nil {
			m.log.Warnf("Failed to locate global node_modules: %v", err)
		} else {
			c := filepath.Join(root, walinePackageEntry)
			if fileExists(c) {
				return c, nil
			}
			m.log.Warnf("Waline entry not found at %s", c)
		}
	}
	return "", ErrEntryNotFound
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func npmGlobalRoot() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "npm", "root", "-g").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
