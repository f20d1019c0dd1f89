// Package python runs short scripts through a Python interpreter
package python

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type (
	// Interpreter runs scripts through a Python executable
	Interpreter struct {
		bin string
	}

	// ExitError carries the exit status and diagnostic output of a script
	// that did not finish successfully
	ExitError struct {
		Stderr string
		Code   int
	}
)

const searchPathScript = "import json, sys; print(json.dumps(sys.path))"

// WaitDelay bounds how long Run waits for the output of a canceled script,
// including output held open by processes it spawned
const WaitDelay = 500 * time.Millisecond

var (
	ErrInterpreterNotFound = errors.New("python interpreter not found")
	ErrInvalidOutput       = errors.New("invalid interpreter output")
)

// New creates an Interpreter for the named executable
func New(bin string) *Interpreter {
	return &Interpreter{bin: bin}
}

// Bin returns the configured executable
func (i *Interpreter) Bin() string {
	return i.bin
}

// Run executes script with the given arguments and returns its standard
// output. A non-zero exit is reported as an *ExitError. Once ctx is done the
// script and everything it started are killed, and Run returns within
// WaitDelay
func (i *Interpreter) Run(
	ctx context.Context, script string, args ...string,
) ([]byte, error) {
	cmd := exec.CommandContext(ctx, i.bin, append([]string{"-c", script}, args...)...)
	isolate(cmd)
	cmd.WaitDelay = WaitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return nil, &ExitError{
				Code:   exit.ExitCode(),
				Stderr: strings.TrimSpace(stderr.String()),
			}
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInterpreterNotFound, i.bin)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// SearchPath returns the interpreter's module search path (sys.path),
// without empty entries
func (i *Interpreter) SearchPath(ctx context.Context) ([]string, error) {
	out, err := i.Run(ctx, searchPathScript)
	if err != nil {
		return nil, err
	}
	var paths []string
	if err := json.Unmarshal(out, &paths); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}
	res := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			res = append(res, p)
		}
	}
	return res, nil
}

// Error implements the error interface
func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return fmt.Sprintf("exit status %d: %s", e.Code, lastLine(e.Stderr))
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
