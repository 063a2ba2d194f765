package repository

import (
	"context"
	"errors"
)

// ErrNoTags is returned when no tag is reachable from HEAD.
var ErrNoTags = errors.New("no names found, cannot describe anything")

// DescribeArgs are the describe flags the version header depends on.
var DescribeArgs = []string{"describe", "--dirty", "--tags", "--long"}

// GitRepository defines the interface for Git operations.

type GitRepository interface {
	// Describe returns the raw text of `git describe --dirty --tags --long`.
	Describe(ctx context.Context) (string, error)
}
