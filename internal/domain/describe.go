package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrDescribeParse is matched by every DescribeParseError.
var ErrDescribeParse = errors.New("describe output did not match version pattern")

// describePattern matches MAJOR.MINOR.MICRO-COMMITS-HASH[-dirty].
var describePattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)-(\d+)-(\w+)-?(dirty)?`)

// DescribeParseError reports describe output that holds no version.
type DescribeParseError struct {
	Output string
	Err    error
}

func (e *DescribeParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse describe output %q: %v", e.Output, e.Err)
	}
	return fmt.Sprintf("failed to parse describe output %q: %v", e.Output, ErrDescribeParse)
}

func (e *DescribeParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDescribeParse, e.Err}
	}
	return []error{ErrDescribeParse}
}

// ParseDescribe builds a normalized VersionRecord from the output of
// `git describe --dirty --tags --long`. Only the final path segment is
// examined, so tags like release/1.2.3 are accepted.
func ParseDescribe(output string) (*VersionRecord, error) {
	trimmed := strings.TrimSpace(output)
	segment := trimmed
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		segment = trimmed[idx+1:]
	}
	groups := describePattern.FindStringSubmatch(segment)
	if groups == nil {
		return nil, &DescribeParseError{Output: trimmed}
	}
	numbers := make([]uint64, 4)
	for i := range numbers {
		n, err := strconv.ParseUint(groups[i+1], 10, 64)
		if err != nil {
			return nil, &DescribeParseError{Output: trimmed, Err: err}
		}
		numbers[i] = n
	}
	rec := NewVersionRecord()
	rec.Major = numbers[0]
	rec.Minor = numbers[1]
	rec.Micro = numbers[2]
	rec.CommitsPastHead = numbers[3]
	rec.Hash = groups[5]
	rec.IsDirty = groups[6]
	rec.normalize()
	return rec, nil
}
