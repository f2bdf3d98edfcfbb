//go:build !windows

package utils

import (
	"errors"
	"os/exec"
	"testing"
	"time"
)

func startGroup(t *testing.T, script string) (*exec.Cmd, chan struct{}) {
	cmd := exec.Command("/bin/sh", "-c", script)
	SetNewPG(cmd)
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	done := make(chan struct{})
	go func() {
		cmd.Wait()
		close(done)
	}()
	return cmd, done
}

func TestIsProcessRunning(t *testing.T) {
	cmd, done := startGroup(t, "sleep 30")

	running, err := IsProcessRunning(cmd.Process.Pid)
	if err != nil || !running {
		t.Fatalf("expected running, got %v, %v", running, err)
	}

	if err := TerminateProcessGroup(cmd.Process.Pid); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("process not reaped")
	}

	running, _ = IsProcessRunning(cmd.Process.Pid)
	if running {
		t.Errorf("expected process to be gone")
	}
}

func TestKillProcessGroupIgnoringTerm(t *testing.T) {
	cmd, done := startGroup(t, "trap '' TERM; while true; do sleep 0.1; done")
	time.Sleep(200 * time.Millisecond)

	if err := TerminateProcessGroup(cmd.Process.Pid); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	select {
	case <-done:
		t.Fatal("process should ignore SIGTERM")
	case <-time.After(300 * time.Millisecond):
	}

	if err := KillProcessGroup(cmd.Process.Pid); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("process survived SIGKILL")
	}
}

func TestSignalMissingProcess(t *testing.T) {
	if err := TerminateProcessGroup(0x7ffffff0); !errors.Is(err, ErrProcessNotFound) {
		t.Errorf("expected ErrProcessNotFound, got %v", err)
	}
	if !WaitProcessExit(0x7ffffff0, 100*time.Millisecond) {
		t.Errorf("missing process should count as exited")
	}
}

func TestGetCommandLine(t *testing.T) {
	cmd, args, err := GetCommandLine("{{.Command}}", []string{"{{.Entry}}", "{{.Empty}}"},
		map[string]string{"Command": "node", "Entry": "/opt/waline/vanilla.js", "Empty": ""})
	if err != nil {
		t.Fatalf("GetCommandLine: %v", err)
	}
	if cmd != "node" || len(args) != 1 || args[0] != "/opt/waline/vanilla.js" {
		t.Errorf("unexpected result: %s %v", cmd, args)
	}
}
