package domain

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// HeaderGuard derives the include guard token from a header path:
// "include/foo.h" becomes "__FOO_H".
func HeaderGuard(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.ToUpper(base))
	return fmt.Sprintf("__%s_H", name)
}

// RenderHeader renders the record as a C header wrapped in the given guard.
// The output depends only on its inputs.
func RenderHeader(guard string, rec *VersionRecord) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "#ifndef %s\n", guard)
	fmt.Fprintf(&buf, "#define %s\n", guard)
	for _, f := range fieldOrder {
		switch f.Kind() {
		case KindString:
			fmt.Fprintf(&buf, "#define %s \"%s\"\n", f.Macro(), rec.Value(f))
		default:
			fmt.Fprintf(&buf, "#define %s %s\n", f.Macro(), rec.Value(f))
		}
	}
	fmt.Fprintf(&buf, "#endif /* %s */\n", guard)
	return buf.Bytes()
}
