// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"

	"github.com/staranto/dnos-kdev/internal/plan"
)

// DryPrefix starts every line written by a DryRunner.
const DryPrefix = "DRY: "

// Runner runs, or pretends to run, an external command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExitError reports a child process that exited non-zero. It satisfies
// cli.ExitCoder so the code travels unchanged to the process exit.
type ExitError struct {
	Command string
	Code    int
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command failed (exit=%d): %s", e.Code, e.Command)
}

func (e *ExitError) ExitCode() int { return e.Code }

func (e *ExitError) Unwrap() error { return e.Err }

// DryRunner writes the command line it was asked to run, prefixed with
// DryPrefix, and never executes anything.
type DryRunner struct {
	W io.Writer
}

func (r DryRunner) Run(_ context.Context, name string, args ...string) error {
	_, err := fmt.Fprintf(r.W, "%s%s\n", DryPrefix, plan.Line(name, args...))
	return err
}

// Note writes a free-form dry-run line for steps that are not a single
// command, e.g. an upload.
func (r DryRunner) Note(format string, a ...any) error {
	_, err := fmt.Fprintf(r.W, DryPrefix+format+"\n", a...)
	return err
}

// ExecRunner executes commands with the given stdio, which default to the
// process' own.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    []string
	Dir    string

	// notify is swapped in tests to avoid touching process-wide signal state.
	notify func(chan<- os.Signal, ...os.Signal)
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	line := plan.Line(name, args...)

	cmd := exec.Command(name, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if r.Stdin != nil {
		cmd.Stdin = r.Stdin
	}
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	}
	cmd.Dir = r.Dir
	if r.Env != nil {
		cmd.Env = r.Env
	}

	log.Infof("running %s", line)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	stop := r.forwardSignals(ctx, cmd.Process)
	err := cmd.Wait()
	stop()

	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Debugf("finished %s", name)

	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: line, Code: exitCode(exitErr), Err: err}
	}
	return fmt.Errorf("failed to run command: %s: %w", line, err)
}

// forwardSignals relays SIGINT/SIGTERM received by this process to the child
// while it runs, and the context's cancellation as SIGTERM. The returned func
// stops forwarding.
func (r ExecRunner) forwardSignals(ctx context.Context, p *os.Process) func() {
	notify := r.notify
	if notify == nil {
		notify = signal.Notify
	}

	sigs := make(chan os.Signal, 1)
	notify(sigs, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		for {
			select {
			case sig := <-sigs:
				log.Debugf("forwarding %v to pid %d", sig, p.Pid)
				_ = p.Signal(sig)
			case <-ctx.Done():
				_ = p.Signal(syscall.SIGTERM)
				return
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
		<-finished
	}
}

// exitCode maps a child's wait status the way shells do: the exit status
// itself, or 128+N when the child was killed by signal N.
func exitCode(err *exec.ExitError) int {
	if status, ok := err.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	if code := err.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
