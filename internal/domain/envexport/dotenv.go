// Where: fnctl/internal/domain/envexport/dotenv.go
// What: Render converted config entries as a dotenv document.
// Why: Produce aligned, commented env files that point back to the original keys.
package envexport

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var quotePattern = regexp.MustCompile(`(['"])`)

// escapeValue escapes the first newline, carriage return, tab, and vertical
// tab of s, then backslash-prefixes every quote.
func escapeValue(s string) string {
	s = strings.Replace(s, "\n", `\n`, 1)
	s = strings.Replace(s, "\r", `\r`, 1)
	s = strings.Replace(s, "\t", `\t`, 1)
	s = strings.Replace(s, "\v", `\v`, 1)
	return quotePattern.ReplaceAllString(s, `\$1`)
}

// ToDotenvFormat renders one KEY="value" line per entry, padded to a common
// width and followed by a "# from <origKey>" comment. A non-empty header is
// written on its own line first.
func ToDotenvFormat(entries []ConfigToEnvEntry, header string) string {
	lines := make([]string, len(entries))
	width := 0
	for i, entry := range entries {
		lines[i] = entry.NewKey + `="` + escapeValue(entry.Value) + `"`
		if n := utf8.RuneCountInString(lines[i]); n > width {
			width = n
		}
	}

	var b strings.Builder
	if header != "" {
		b.WriteString(header)
		b.WriteString("\n")
	}
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
		b.WriteString(strings.Repeat(" ", width-utf8.RuneCountInString(line)))
		b.WriteString(" # from ")
		b.WriteString(entries[i].OrigKey)
	}
	return b.String()
}
