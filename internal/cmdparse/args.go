package cmdparse

import "strings"

// Well-known argument keys.
const (
	ValuesKey = "values" // leftover positional tokens
	QueryKey  = "query"  // loose query captured by intent patterns
)

// ArgValue is one argument value: either Text or List. Handlers switch on
// the concrete type.
type ArgValue interface {
	argValue()
}

// Text is a single string value, produced by --key value options.
type Text string

// List is an ordered sequence of strings, produced for positional values
// and extracted hashtags.
type List []string

func (Text) argValue() {}
func (List) argValue() {}

// Args maps argument names to values.
type Args map[string]ArgValue

// Text returns the string stored under key. A List is not converted.
func (a Args) Text(key string) (string, bool) {
	v, ok := a[key].(Text)
	return string(v), ok
}

// List returns the list stored under key. A Text is not converted.
func (a Args) List(key string) ([]string, bool) {
	v, ok := a[key].(List)
	return []string(v), ok
}

// Values returns the positional values, or nil when there are none.
func (a Args) Values() []string {
	v, _ := a.List(ValuesKey)
	return v
}

// String returns the value under key flattened to a single string. Lists
// are joined with spaces; a missing key yields "".
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case Text:
		return string(v)
	case List:
		return strings.Join(v, " ")
	default:
		return ""
	}
}
