// Package cmdparse turns the argument part of a typed command line into
// structured values. It splits a line into independent commands on unquoted
// chain operators, pulls out --key value options, and collects the leftover
// positional tokens while dropping command keywords.
package cmdparse

import "strings"

// Split breaks a line into separate command lines on unquoted ; and &&.
// Double quotes group text; single quotes are ordinary characters because
// they appear in names (O'Brien). Empty segments are dropped and each
// returned line is trimmed.
func Split(line string) []string {
	segments := splitOperators(line)
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		trimmed := strings.TrimSpace(seg)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// splitOperators splits on unquoted && and ;.
func splitOperators(line string) []string {
	var segments []string
	inDouble := false
	segStart := 0

	i := 0
	for i < len(line) {
		ch := line[i]
		if ch == '"' {
			inDouble = !inDouble
			i++
			continue
		}
		if inDouble {
			i++
			continue
		}

		if ch == ';' {
			segments = append(segments, line[segStart:i])
			segStart = i + 1
			i++
			continue
		}
		if ch == '&' && i+1 < len(line) && line[i+1] == '&' {
			segments = append(segments, line[segStart:i])
			segStart = i + 2
			i += 2
			continue
		}
		i++
	}
	if segStart < len(line) {
		segments = append(segments, line[segStart:])
	}
	return segments
}
