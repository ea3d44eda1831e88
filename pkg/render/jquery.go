package render

import (
	"fmt"
	"strings"
)

const selectorMeta = "!\"#$%&'()*+,./:;<=>?@[\\]^`{|}~"

// Execute formats a jQuery statement, appending the terminating semicolon when
// the format leaves it out.
func Execute(format string, args ...any) string {
	script := strings.TrimSpace(fmt.Sprintf(format, args...))
	if script != "" && !strings.HasSuffix(script, ";") {
		script += ";"
	}
	return script
}

// SafeMarkupID escapes CSS selector metacharacters in id so it can be placed
// inside a single-quoted JavaScript string such as $('#...').
func SafeMarkupID(id string) string {
	if !strings.ContainsAny(id, selectorMeta) {
		return id
	}
	var b strings.Builder
	for _, r := range id {
		if !strings.ContainsRune(selectorMeta, r) {
			b.WriteRune(r)
			continue
		}
		switch r {
		case '\\':
			b.WriteString(`\\\\`)
		case '\'':
			b.WriteString(`\\\'`)
		default:
			b.WriteString(`\\`)
			b.WriteRune(r)
		}
	}
	return b.String()
}
