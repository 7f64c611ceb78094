package services

import "strings"

// fieldDelimiter separates TAG=value fields on an LX line.
const fieldDelimiter = "!"

// fieldValue returns the value of the first '!'-delimited field on line
// containing tag. The value is the text after the '=' that follows the
// tag, with surrounding whitespace removed.
func fieldValue(line, tag string) (string, bool) {
	for _, field := range strings.Split(strings.TrimSpace(line), fieldDelimiter) {
		at := strings.Index(field, tag)
		if at < 0 {
			continue
		}
		rest := field[at:]
		eq := strings.Index(rest, "=")
		if eq < 0 {
			return "", false
		}
		return strings.TrimSpace(rest[eq+1:]), true
	}
	return "", false
}
