package modelmap

import (
	"strings"
	"unicode"
)

// Parse converts text in the restricted two-level key/value dialect into a
// Mapping. The dialect is deliberately not YAML: two indentation levels, no
// lists, no quoting, no type coercion. Every value is a raw trimmed string.
//
// Rules per line:
//   - blank lines and full-line # comments are skipped
//   - an unindented "key:" opens a new section
//   - an unindented "key: value" is not a section header and is ignored
//   - an indented "key: value" is recorded under the current section
//   - anything else (no colon, no active section, empty value) is dropped
//
// Parse never fails; malformed lines are silently skipped.
func Parse(text string) Mapping {
	out := Mapping{}
	section := ""

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		key, value, found := strings.Cut(trimmed, ":")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "" {
			continue
		}

		if indentOf(line) == 0 {
			if value != "" {
				// Top-level scalar; not a valid section header.
				continue
			}

			section = key
			out[section] = map[string]string{}

			continue
		}

		if section != "" && value != "" {
			out[section][key] = value
		}
	}

	return out
}

// indentOf returns the offset of the first non-whitespace character.
func indentOf(line string) int {
	for i, r := range line {
		if !unicode.IsSpace(r) {
			return i
		}
	}

	return len(line)
}
