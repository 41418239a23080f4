package guest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single in-guest command. WSL startup of a cold
// distribution can take several seconds on its own.
const DefaultTimeout = 30 * time.Second

// WSLExecutor runs commands inside a WSL distribution via wsl.exe. Everything
// after "--" is handed to the guest init verbatim, so no element of argv is
// subject to shell interpretation on the host side.
type WSLExecutor struct {
	// Binary is the wsl launcher; defaults to "wsl.exe".
	Binary string
	// Timeout bounds each invocation; defaults to DefaultTimeout. The
	// in-flight command is killed when it elapses.
	Timeout time.Duration
}

// NewWSLExecutor returns a WSLExecutor with defaults applied.
func NewWSLExecutor(timeout time.Duration) *WSLExecutor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &WSLExecutor{Binary: "wsl.exe", Timeout: timeout}
}

func (e *WSLExecutor) Execute(ctx context.Context, distro string, argv []string) (*Result, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty argv")
	}
	binary := e.Binary
	if binary == "" {
		binary = "wsl.exe"
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{"-d", distro, "--"}, argv...)
	cmd := exec.CommandContext(ctx, binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The guest ran the command; it just failed.
			return &Result{
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				ExitCode: exitErr.ExitCode(),
			}, nil
		}
		return nil, fmt.Errorf("run %s in %s: %w", binary, distro, err)
	}

	return &Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: 0}, nil
}
