package validate

import "strings"

// Mobile operator codes accepted after the country prefix.
var operatorCodes = map[string]bool{
	"039": true, "050": true, "063": true, "066": true, "067": true, "068": true,
	"091": true, "092": true, "093": true, "094": true, "095": true, "096": true,
	"097": true, "098": true, "099": true,
}

// IsOperatorCode reports whether code (like "050") is a known mobile
// operator code.
func IsOperatorCode(code string) bool {
	return operatorCodes[code]
}

// cleanPhone strips everything but digits, keeping a leading '+'.
func cleanPhone(phone string) string {
	raw := strings.TrimSpace(phone)
	var b strings.Builder
	if strings.HasPrefix(raw, "+") {
		b.WriteByte('+')
		raw = raw[1:]
	}
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Phone checks a Ukrainian mobile number in international (+380XXXXXXXXX)
// or national (0XXXXXXXXX) form. Separators are ignored.
func Phone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return invalid("phone", "phone number cannot be empty")
	}
	cleaned := cleanPhone(phone)
	switch {
	case strings.HasPrefix(cleaned, "+380"):
		if len(cleaned) != 13 {
			return invalid("phone", "international format should be +380XXXXXXXXX (9 digits after +380)")
		}
		if code := "0" + cleaned[4:6]; !IsOperatorCode(code) {
			return invalid("phone", "invalid operator code: %s", code)
		}
		return nil
	case strings.HasPrefix(cleaned, "0"):
		if len(cleaned) != 10 {
			return invalid("phone", "national format should be 0XXXXXXXXX (10 digits total)")
		}
		if code := cleaned[:3]; !IsOperatorCode(code) {
			return invalid("phone", "invalid operator code: %s", code)
		}
		return nil
	}
	return invalid("phone", "phone number must start with +380 or 0")
}

// NormalizePhone validates phone and returns it as +380XXXXXXXXX.
func NormalizePhone(phone string) (string, error) {
	if err := Phone(phone); err != nil {
		return "", err
	}
	cleaned := cleanPhone(phone)
	if strings.HasPrefix(cleaned, "0") {
		return "+380" + cleaned[1:], nil
	}
	return cleaned, nil
}

// FormatPhone renders a normalized number as "+380 50 123 45 67". Other
// input is returned unchanged.
func FormatPhone(phone string) string {
	if len(phone) != 13 || !strings.HasPrefix(phone, "+380") {
		return phone
	}
	d := phone[4:]
	return "+380 " + d[0:2] + " " + d[2:5] + " " + d[5:7] + " " + d[7:9]
}
