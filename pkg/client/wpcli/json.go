package wpcli

import (
	"encoding/json"
	"regexp"
	"strings"
)

// wp-cli output is not guaranteed to be clean JSON: plugins may print notices,
// ANSI codes or a BOM around the payload. Extraction tolerates that noise by
// locating the first balanced JSON array/object instead of trusting the whole
// stream.

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// extractJSONBlob returns the first balanced JSON object or array found in s,
// tolerating strings and escapes. Returns "" when no balanced JSON exists.
func extractJSONBlob(s string) string {
	arrStart := strings.IndexByte(s, '[')
	objStart := strings.IndexByte(s, '{')

	if arrStart == -1 && objStart == -1 {
		return ""
	}

	var start int

	var open, closing byte

	if arrStart == -1 || (objStart != -1 && objStart < arrStart) {
		start, open, closing = objStart, '{', '}'
	} else {
		start, open, closing = arrStart, '[', ']'
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case char == '\\':
				escaped = true
			case char == '"':
				inString = false
			}

			continue
		}

		switch char {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}

// parseRelaxed decodes JSON from noisy command output. It strips a BOM and
// ANSI codes, tries a strict decode, then falls back to the first balanced
// JSON blob. The boolean reports whether anything was decoded.
func parseRelaxed(text string) (any, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(text), "\ufeff")
	s = stripANSI(s)

	if s == "" {
		return nil, false
	}

	var value any

	err := json.Unmarshal([]byte(s), &value)
	if err == nil {
		return value, true
	}

	blob := extractJSONBlob(s)
	if blob == "" {
		return nil, false
	}

	err = json.Unmarshal([]byte(blob), &value)
	if err != nil {
		return nil, false
	}

	return value, true
}
