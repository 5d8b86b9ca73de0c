package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/raphi011/wts/internal/log"
)

// waitDelay bounds how long Wait blocks on inherited pipes after the
// process has been killed by its context.
const waitDelay = 500 * time.Millisecond

// ExitError is returned when a command ran but exited non-zero.
// Msg holds the trimmed stderr so the error reads like the tool's own message.
type ExitError struct {
	Code int
	Msg  string
}

func (e *ExitError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "exit status " + strconv.Itoa(e.Code)
}

// ExitCode returns the exit code carried by err, or -1 if err did not
// come from a process that exited.
func ExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return -1
}

// Options tweak how a command is spawned.
type Options struct {
	// Env is appended to the current environment.
	Env []string
}

// RunContext executes a command in dir and discards stdout.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	_, err := OutputContextWith(ctx, Options{}, dir, name, args...)
	return err
}

// OutputContext executes a command in dir and returns stdout.
// Stderr is folded into the returned error.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return OutputContextWith(ctx, Options{}, dir, name, args...)
}

// OutputContextWith is OutputContext with spawn options.
func OutputContextWith(ctx context.Context, opts Options, dir, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()
	defer func() { done(time.Since(start)) }()

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	c.WaitDelay = waitDelay
	if len(opts.Env) > 0 {
		c.Env = append(os.Environ(), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		// A killed process reports "signal: killed"; the context error is more useful.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), &ExitError{
				Code: exitErr.ExitCode(),
				Msg:  strings.TrimSpace(stderr.String()),
			}
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
