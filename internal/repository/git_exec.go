package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// execGitRepository runs the git binary to describe the working tree.
type execGitRepository struct {
	binary string
	dir    string
	// zero means the command may run indefinitely
	timeout time.Duration
}

// NewExecGitRepository creates a GitRepository that shells out to binary in dir.
func NewExecGitRepository(binary, dir string, timeout time.Duration) GitRepository {
	if binary == "" {
		binary = "git"
	}
	return &execGitRepository{
		binary:  binary,
		dir:     dir,
		timeout: timeout,
	}
}

// Describe runs the describe command once and returns its standard output.
func (r *execGitRepository) Describe(ctx context.Context) (string, error) {
	output, err := r.executeCommand(ctx, DescribeArgs...)
	if err != nil {
		return "", fmt.Errorf("failed to execute %s describe: %w", r.binary, err)
	}
	return string(output), nil
}

// executeCommand runs the binary with the optional timeout.
func (r *execGitRepository) executeCommand(ctx context.Context, args ...string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("command timed out after %v", r.timeout)
		}
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return nil, fmt.Errorf("command failed: %w (stderr: %s)", err, errMsg)
		}
		return nil, fmt.Errorf("command failed: %w", err)
	}

	return stdout.Bytes(), nil
}
