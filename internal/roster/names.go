package roster

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Names that show up when a pasted list or a stored link was polluted by the
// browser, an extension or a stringified script value.
var corruptName = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(undefined|null|nan|true|false|\[object [a-z]+\])$`),
	regexp.MustCompile(`(?i)(chrome|moz|safari-web|ms-browser)-extension:`),
	regexp.MustCompile(`(?i)^(about|blob|data|javascript|file):`),
	regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*://`),
	regexp.MustCompile(`(?i)^www\.`),
	regexp.MustCompile(`(?i)</?[a-z][^>]*>`),
	regexp.MustCompile(`(?i)function\s*\(|=>\s*\{`),
	regexp.MustCompile(`(?i)^__[a-z0-9_]+__$`),
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "or": true, "the": true, "of": true,
	"to": true, "in": true, "on": true, "at": true, "for": true, "with": true,
	"is": true, "it": true,
}

// CleanName normalizes a raw name to NFC and trims surrounding whitespace.
func CleanName(raw string) string {
	return strings.TrimSpace(norm.NFC.String(raw))
}

// ValidName reports whether name is usable as a player name. Any non-empty
// trimmed string is accepted unless it matches a known corruption pattern.
func ValidName(name string) bool {
	name = CleanName(name)
	if name == "" {
		return false
	}
	if stopwords[strings.ToLower(name)] {
		return false
	}
	for _, re := range corruptName {
		if re.MatchString(name) {
			return false
		}
	}
	return true
}

// SplitNames breaks a pasted list on newlines and commas and keeps the valid
// names in input order.
func SplitNames(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		name := CleanName(f)
		if ValidName(name) {
			names = append(names, name)
		}
	}
	return names
}
