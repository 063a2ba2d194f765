package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DirtyMarker is the only non-empty value IsDirty may hold.
const DirtyMarker = "dirty"

// Field identifies one attribute of a VersionRecord.
type Field string

const (
	FieldMajor           Field = "version_major"
	FieldMinor           Field = "version_minor"
	FieldMicro           Field = "version_micro"
	FieldCommitsPastHead Field = "commits_past_head"
	FieldHash            Field = "version_hash"
	FieldIsDirty         Field = "is_dirty"
)

// FieldKind tells the renderer how a field value is emitted.
type FieldKind int

const (
	KindInteger FieldKind = iota
	KindString
)

// fieldOrder is the enumeration order used for rendering and printing.
var fieldOrder = []Field{
	FieldMajor,
	FieldMinor,
	FieldMicro,
	FieldCommitsPastHead,
	FieldHash,
	FieldIsDirty,
}

var fieldKinds = map[Field]FieldKind{
	FieldMajor:           KindInteger,
	FieldMinor:           KindInteger,
	FieldMicro:           KindInteger,
	FieldCommitsPastHead: KindInteger,
	FieldHash:            KindString,
	FieldIsDirty:         KindString,
}

var fieldMacros = map[Field]string{
	FieldMajor:           "GIT_VERSION_MAJOR",
	FieldMinor:           "GIT_VERSION_MINOR",
	FieldMicro:           "GIT_VERSION_MICRO",
	FieldCommitsPastHead: "GIT_COMMIT_PAST_HEAD",
	FieldHash:            "GIT_SHA",
	FieldIsDirty:         "GIT_DIRTY",
}

// Fields returns the record fields in enumeration order.
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// Kind returns how the field is emitted.
func (f Field) Kind() FieldKind {
	return fieldKinds[f]
}

// Macro returns the preprocessor macro name for the field.
func (f Field) Macro() string {
	return fieldMacros[f]
}

// VersionRecord is the parsed and normalized result of a git describe.
type VersionRecord struct {
	Major           uint64 `json:"version_major" yaml:"version_major"`
	Minor           uint64 `json:"version_minor" yaml:"version_minor"`
	Micro           uint64 `json:"version_micro" yaml:"version_micro"`
	CommitsPastHead uint64 `json:"commits_past_head" yaml:"commits_past_head"`
	Hash            string `json:"version_hash" yaml:"version_hash"`
	IsDirty         string `json:"is_dirty" yaml:"is_dirty"`
}

// NewVersionRecord returns a record holding the default values.
func NewVersionRecord() *VersionRecord {
	return &VersionRecord{
		Hash: "0000000",
	}
}

// Value returns the textual value of a field, unquoted.
func (r *VersionRecord) Value(f Field) string {
	switch f {
	case FieldMajor:
		return strconv.FormatUint(r.Major, 10)
	case FieldMinor:
		return strconv.FormatUint(r.Minor, 10)
	case FieldMicro:
		return strconv.FormatUint(r.Micro, 10)
	case FieldCommitsPastHead:
		return strconv.FormatUint(r.CommitsPastHead, 10)
	case FieldHash:
		return r.Hash
	case FieldIsDirty:
		return r.IsDirty
	default:
		return ""
	}
}

// Dirty reports whether the record carries the dirty marker.
func (r *VersionRecord) Dirty() bool {
	return r.IsDirty == DirtyMarker
}

// normalize applies the dirty policy. Any commit past the tag marks the
// record dirty, and a dirty record gets "+dirty" appended to its hash.
// It must only run once on a freshly parsed record.
func (r *VersionRecord) normalize() {
	if r.CommitsPastHead > 0 {
		r.IsDirty = DirtyMarker
	}
	if r.Dirty() {
		r.Hash += "+" + DirtyMarker
	}
}

// SemVer returns the record as a semantic version. Commit distance and hash
// become build metadata, since they do not affect precedence.
func (r *VersionRecord) SemVer() (*semver.Version, error) {
	metadata := ""
	if r.CommitsPastHead > 0 || r.Dirty() {
		metadata = fmt.Sprintf("%d.%s", r.CommitsPastHead, sanitizeMetadata(r.Hash))
		for _, ident := range strings.Split(metadata, ".") {
			if ident == "" {
				return nil, fmt.Errorf("invalid build metadata %q: empty identifier", metadata)
			}
		}
	}
	v := semver.New(r.Major, r.Minor, r.Micro, "", metadata)
	if _, err := semver.StrictNewVersion(v.String()); err != nil {
		return nil, fmt.Errorf("invalid semantic version %s: %w", v.String(), err)
	}
	return v, nil
}

// sanitizeMetadata maps a hash into the semver build metadata alphabet.
func sanitizeMetadata(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '-':
			out = append(out, c)
		default:
			out = append(out, '.')
		}
	}
	return string(out)
}
