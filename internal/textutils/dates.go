package textutils

import (
	"path/filepath"
	"regexp"
	"strings"
)

// trailingDate matches a YYYY-MM-DD or YYYYMMDD token at the end of a base
// name together with the separators in front of it.
var trailingDate = regexp.MustCompile(`[\s_.-]*(?:\d{4}-\d{2}-\d{2}|\d{8})$`)

// StripTrailingDates removes trailing date tokens from name, lowercased and
// without its extension. "Statement_2024-01-31.pdf" becomes "statement".
func StripTrailingDates(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(strings.TrimSpace(base))
	for {
		stripped := trailingDate.ReplaceAllString(base, "")
		if stripped == base {
			return base
		}
		base = stripped
	}
}
