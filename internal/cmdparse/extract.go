package cmdparse

import (
	"regexp"
	"strings"
)

var (
	// --name "quoted value" or --name bare-token
	optionPattern = regexp.MustCompile(`--([A-Za-z][\w-]*)\s+(?:"([^"]*)"|(\S+))`)
	// "quoted group" or bare-token
	tokenPattern = regexp.MustCompile(`"([^"]*)"|(\S+)`)
)

// Keywords is a case-insensitive set of words that never count as
// positional values.
type Keywords map[string]struct{}

// NewKeywords builds a keyword set from every whitespace-separated word of
// every phrase.
func NewKeywords(phrases []string) Keywords {
	kw := make(Keywords)
	for _, p := range phrases {
		for _, w := range strings.Fields(p) {
			kw[strings.ToLower(w)] = struct{}{}
		}
	}
	return kw
}

// Has reports whether word (compared lowercased) is a keyword.
func (k Keywords) Has(word string) bool {
	_, ok := k[strings.ToLower(word)]
	return ok
}

// Extract pulls arguments out of input, which should keep its original
// case. Options are removed from the working copy before positional tokens
// are collected, so option values never appear in "values". A later option
// with the same name overwrites an earlier one. Option names are lowercased.
func Extract(input string, keywords Keywords) Args {
	args := make(Args)
	for _, m := range optionPattern.FindAllStringSubmatchIndex(input, -1) {
		name := strings.ToLower(input[m[2]:m[3]])
		if m[4] >= 0 {
			args[name] = Text(input[m[4]:m[5]])
		} else {
			args[name] = Text(input[m[6]:m[7]])
		}
	}
	residual := StripOptions(input)

	var values []string
	for _, tok := range Tokens(residual) {
		if keywords.Has(tok) {
			continue
		}
		values = append(values, tok)
	}
	if len(values) > 0 {
		args[ValuesKey] = List(values)
	}
	return args
}

// StripOptions returns input with every --name value option replaced by a
// single space. The text left over is what positional values come from.
func StripOptions(input string) string {
	return optionPattern.ReplaceAllLiteralString(input, " ")
}

// Tokens splits s into double-quoted groups (quotes removed, contents kept
// verbatim) and whitespace-delimited bare tokens, left to right. Empty
// quoted groups are skipped.
func Tokens(s string) []string {
	var out []string
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(s, -1) {
		if m[2] >= 0 {
			if m[3] > m[2] {
				out = append(out, s[m[2]:m[3]])
			}
			continue
		}
		out = append(out, s[m[0]:m[1]])
	}
	return out
}
