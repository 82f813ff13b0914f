package validate

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Misspellings seen often enough to name explicitly.
var knownTypos = map[string]string{
	"gmali.com":   "gmail.com",
	"gmai.com":    "gmail.com",
	"yaho.com":    "yahoo.com",
	"yahooo.com":  "yahoo.com",
	"hotmali.com": "hotmail.com",
	"outlok.com":  "outlook.com",
}

// Providers whose near-misses are flagged.
var commonDomains = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
	"icloud.com", "ukr.net", "i.ua", "meta.ua", "proton.me",
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Email checks an address's structure and rejects likely provider typos.
func Email(email string) error {
	norm := NormalizeEmail(email)
	if norm == "" {
		return invalid("email", "email cannot be empty")
	}
	local, domain, ok := strings.Cut(norm, "@")
	if !ok || strings.Contains(domain, "@") {
		return invalid("email", "email must have exactly one @ symbol")
	}
	if local == "" || len(local) > 64 {
		return invalid("email", "email local part cannot be empty or exceed 64 characters")
	}
	if domain == "" {
		return invalid("email", "email domain cannot be empty")
	}
	if !strings.Contains(domain, ".") {
		return invalid("email", "email domain must contain a dot (.)")
	}
	if tld := domain[strings.LastIndex(domain, ".")+1:]; len(tld) < 2 {
		return invalid("email", "top-level domain must be at least 2 characters")
	}
	if !emailPattern.MatchString(norm) {
		return invalid("email", "invalid email format, expected user@domain.ext")
	}
	if fix, ok := EmailTypo(norm); ok {
		return invalid("email", "email domain may contain a typo, did you mean %s?", fix)
	}
	return nil
}

// EmailTypo suggests a corrected address when the domain is a known
// misspelling or one edit away from a common provider.
func EmailTypo(email string) (string, bool) {
	local, domain, ok := strings.Cut(NormalizeEmail(email), "@")
	if !ok || domain == "" {
		return "", false
	}
	if fix, ok := knownTypos[domain]; ok {
		return local + "@" + fix, true
	}
	for _, d := range commonDomains {
		if domain == d {
			return "", false
		}
	}
	for _, d := range commonDomains {
		if len(d) >= 8 && levenshtein.ComputeDistance(domain, d) == 1 {
			return local + "@" + d, true
		}
	}
	return "", false
}
