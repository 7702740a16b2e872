//go:build linux

package engine

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"codearena/internal/judge/sandbox/result"
	"codearena/internal/judge/sandbox/spec"
	appErr "codearena/pkg/errors"
)

// localEngine runs commands as local processes in their own process group,
// so a timeout or cancellation can kill the whole tree with one signal.
type localEngine struct {
	cfg Config
}

// NewEngine creates the process-based engine.
func NewEngine(cfg Config) (Engine, error) {
	cfg.setDefaults()
	return &localEngine{cfg: cfg}, nil
}

func (e *localEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error) {
	if len(runSpec.Cmd) == 0 {
		return result.RunResult{}, appErr.New(appErr.InvalidParams).WithMessage("command is empty")
	}
	if runSpec.WorkDir == "" {
		return result.RunResult{}, appErr.ValidationError("work_dir", "required")
	}

	wallMs := runSpec.Limits.WallTimeMs
	if wallMs <= 0 {
		wallMs = e.cfg.DefaultWallTimeMs
	}
	outputKB := runSpec.Limits.OutputKB
	if outputKB <= 0 {
		outputKB = e.cfg.DefaultOutputKB
	}

	cmd := exec.Command(runSpec.Cmd[0], runSpec.Cmd[1:]...)
	cmd.Dir = runSpec.WorkDir
	cmd.Env = runSpec.Env
	cmd.Stdin = strings.NewReader(runSpec.Stdin)

	stdout := newCappedBuffer(outputKB)
	stderr := newCappedBuffer(outputKB)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// Own process group: the kill below reaches grandchildren too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return result.RunResult{}, appErr.Wrapf(err, appErr.JudgeSystemError, "start process failed")
	}
	pgid := cmd.Process.Pid

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	timer := time.NewTimer(time.Duration(wallMs) * time.Millisecond)
	defer timer.Stop()

	var (
		waitErr  error
		timedOut bool
	)
	select {
	case waitErr = <-waitCh:
	case <-timer.C:
		timedOut = true
		killGroup(pgid)
		waitErr = <-waitCh
	case <-ctx.Done():
		// Cancellation and timeout share the kill path; only the reported
		// outcome differs.
		killGroup(pgid)
		<-waitCh
		return result.RunResult{TimeMs: time.Since(start).Milliseconds()}, appErr.Wrap(ctx.Err(), appErr.JudgeCancelled)
	}

	res := result.RunResult{
		TimeMs:   time.Since(start).Milliseconds(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		TimedOut: timedOut,
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			return res, appErr.Wrapf(waitErr, appErr.JudgeSystemError, "wait process failed")
		}
	}
	if timedOut {
		// A killed process reports a signal exit; the timeout flag wins.
		res.ExitCode = -1
	}
	return res, nil
}

func killGroup(pgid int) {
	_ = syscall.Kill(-pgid, syscall.SIGKILL)
}
