package extract

import (
	"strings"
	"unicode/utf8"
)

// bullets are the list markers recognized at the start of a line and as item separators.
const bullets = "•·▪●◦‣■□➢►"

func isBullet(r rune) bool {
	return strings.ContainsRune(bullets, r)
}

// splitItems splits a body on the list delimiters: comma, semicolon, bullet, newline and tab.
func splitItems(body string) []string {
	return strings.FieldsFunc(body, func(r rune) bool {
		switch r {
		case ',', ';', '\n', '\r', '\t':
			return true
		}
		return isBullet(r)
	})
}

// stripMarker removes a leading bullet, dash or asterisk.
func stripMarker(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}

	r, size := utf8.DecodeRuneInString(line)
	if isBullet(r) || r == '-' || r == '*' || r == '–' {
		return strings.TrimSpace(line[size:]), true
	}
	return line, false
}

// splitEntries groups lines into entries. A blank line ends the current entry
// and a bulleted line starts a new one. Extra separators split entries further.
func splitEntries(body string, separators string) [][]string {
	entries := make([][]string, 0)
	current := make([]string, 0)

	flush := func() {
		if len(current) > 0 {
			entries = append(entries, current)
			current = make([]string, 0)
		}
	}

	for _, line := range strings.Split(body, "\n") {
		text, bulleted := stripMarker(line)
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if bulleted {
			flush()
		}
		if text == "" {
			continue
		}

		if separators == "" {
			current = append(current, text)
			continue
		}

		parts := strings.FieldsFunc(text, func(r rune) bool { return strings.ContainsRune(separators, r) })
		for i, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if i > 0 {
				flush()
			}
			current = append(current, part)
		}
	}
	flush()

	return entries
}
