package proc

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"vanblog/internal/utils"
)

/**
 * ProcessSpec 子进程启动参数
 * @property {string} title - 进程标题，用于日志
 * @property {string} command - 执行命令
 * @property {[]string} args - 命令参数
 * @property {string} workDir - 工作目录
 * @property {[]string} env - 完整环境变量(KEY=VALUE)
 * @property {io.Writer} stdout - 标准输出去向
 * @property {io.Writer} stderr - 标准错误去向
 */
type ProcessSpec struct {
	Title   string
	Command string
	Args    []string
	WorkDir string
	Env     []string
	Stdout  io.Writer
	Stderr  io.Writer
}

// 子进程退出后等待输出管道关闭的最长时间，孙进程继承管道时Wait不会被挂住
const pipeWaitDelay = time.Second

/**
 * Child 一次拉起到退出周期内的子进程
 * @description
 * - 创建时即启动监测协程，统一使用cmd.Wait()回收进程
 * - Done()在进程退出且输出拷贝结束后关闭
 */
type Child struct {
	Title     string
	StartTime time.Time
	cmd       *exec.Cmd
	done      chan struct{}
	exitErr   error
}

/**
 * Start child process in its own process group
 * @param {ProcessSpec} spec - Launch parameters
 * @returns {*Child} Started child
 * @returns {error} Returns error if the process can't be started
 */
func StartChild(spec ProcessSpec) (*Child, error) {
	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Dir = spec.WorkDir
	cmd.Env = spec.Env
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	cmd.WaitDelay = pipeWaitDelay
	utils.SetNewPG(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start '%s %s': %w", spec.Command, strings.Join(spec.Args, " "), err)
	}
	c := &Child{
		Title:     spec.Title,
		StartTime: time.Now(),
		cmd:       cmd,
		done:      make(chan struct{}),
	}
	go c.watch()
	return c, nil
}

func (c *Child) watch() {
	c.exitErr = c.cmd.Wait()
	close(c.done)
}

func (c *Child) Pid() int {
	return c.cmd.Process.Pid
}

func (c *Child) Done() <-chan struct{} {
	return c.done
}

// ExitErr 仅在Done()关闭后有效
func (c *Child) ExitErr() error {
	return c.exitErr
}

// ExitReason 可读的退出原因
func (c *Child) ExitReason() string {
	if c.exitErr != nil {
		return fmt.Sprintf("exited with error: %v", c.exitErr)
	}
	return "exited normally"
}

/**
 * Wait for the child to exit
 * @param {time.Duration} timeout - Upper bound of the wait
 * @returns {bool} Returns true if the child exited within timeout
 */
func (c *Child) WaitExit(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-c.done:
		return true
	case <-timer.C:
		return false
	}
}

func (c *Child) Exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
