package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/compozy/git-version-header/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// recordOutput is the structured form of a record for json and yaml.
type recordOutput struct {
	domain.VersionRecord `yaml:",inline"`
	SemVer               string `json:"semver,omitempty" yaml:"semver,omitempty"`
}

func validOutputFormat(format string) bool {
	switch format {
	case outputText, outputJSON, outputYAML:
		return true
	}
	return false
}

// printRecord writes the record in the requested format. Text output lists
// one "field: value" line per field in header order.
func printRecord(w io.Writer, rec *domain.VersionRecord, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newRecordOutput(rec))
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newRecordOutput(rec)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		for _, f := range domain.Fields() {
			if _, err := fmt.Fprintf(w, "%s: %s\n", f, rec.Value(f)); err != nil {
				return err
			}
		}
		return nil
	}
}

func newRecordOutput(rec *domain.VersionRecord) recordOutput {
	out := recordOutput{VersionRecord: *rec}
	if v, err := rec.SemVer(); err == nil {
		out.SemVer = v.String()
	}
	return out
}
