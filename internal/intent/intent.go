// Package intent guesses what a free-form sentence is about and mines it
// for loosely typed parameters (names, phones, emails, hashtags). It works
// without the command vocabulary and is used to pre-fill prompts.
package intent

import (
	"regexp"
	"slices"
	"strings"

	"github.com/TiredRebel/personal-assistant/internal/cmdparse"
)

// Action is the verb of an intent.
type Action string

const (
	ActionAdd    Action = "add"
	ActionSearch Action = "search"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
)

// Entity is the object of an intent.
type Entity string

const (
	EntityTag      Entity = "tag"
	EntityBirthday Entity = "birthday"
	EntityContact  Entity = "contact"
	EntityNote     Entity = "note"
)

// Intent is the coarse reading of a sentence. Empty fields mean nothing
// was recognized.
type Intent struct {
	Action     Action  `json:"action,omitempty"`
	Entity     Entity  `json:"entity,omitempty"`
	Confidence float64 `json:"confidence"`
}

type actionKeywords struct {
	action   Action
	keywords []string
}

type entityKeywords struct {
	entity   Entity
	keywords []string
}

// Checked in order; the first hit wins.
var actions = []actionKeywords{
	{ActionAdd, []string{"add", "create", "new", "make", "insert", "save"}},
	{ActionSearch, []string{"find", "search", "look for", "where", "locate"}},
	{ActionEdit, []string{"edit", "update", "change", "modify", "alter"}},
	{ActionDelete, []string{"delete", "remove", "erase", "drop", "destroy"}},
	{ActionList, []string{"list", "show", "display", "view", "all"}},
}

// Tag comes before note: "tag" sentences often mention notes too.
var entities = []entityKeywords{
	{EntityTag, []string{"tag", "label", "category"}},
	{EntityBirthday, []string{"birthday", "birth date", "born"}},
	{EntityContact, []string{"contact", "person", "phone", "number"}},
	{EntityNote, []string{"note", "memo", "reminder", "text"}},
}

// Recognize detects the first matching action and entity by keyword
// substring. Confidence is 0.8 when both are found, else 0.5.
func Recognize(text string) Intent {
	lower := strings.ToLower(text)
	var in Intent
	for _, a := range actions {
		if containsAny(lower, a.keywords) {
			in.Action = a.action
			break
		}
	}
	for _, e := range entities {
		if containsAny(lower, e.keywords) {
			in.Entity = e.entity
			break
		}
	}
	in.Confidence = 0.5
	if in.Action != "" && in.Entity != "" {
		in.Confidence = 0.8
	}
	return in
}

func containsAny(s string, subs []string) bool {
	return slices.ContainsFunc(subs, func(sub string) bool {
		return strings.Contains(s, sub)
	})
}

// Parameter keys set by ExtractParameters.
const (
	ParamName  = "name"
	ParamPhone = "phone"
	ParamEmail = "email"
	ParamTags  = "tags"
)

var (
	namePattern        = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	strictPhonePattern = regexp.MustCompile(`\(\d{2,4}\)\s*\d{3}[-\s]?\d{4}`)
	loosePhonePattern  = regexp.MustCompile(`\+?[\d\s\-]{7,}`)
	emailPattern       = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	tagPattern         = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
)

// Capitalized words that start sentences as commands rather than names.
var nameStopwords = map[string]bool{
	"Add": true, "Create": true, "New": true, "Find": true, "Search": true,
	"Edit": true, "Update": true, "Delete": true, "Remove": true, "List": true,
	"Show": true, "Display": true, "Phone": true, "Email": true, "Contact": true,
	"Note": true, "Tag": true, "Birthday": true,
}

// ExtractParameters pulls a name, phone, email and hashtags out of text.
// Each extractor runs independently and a key is present only when its
// value was found.
func ExtractParameters(text string) cmdparse.Args {
	params := make(cmdparse.Args)

	for _, run := range namePattern.FindAllString(text, -1) {
		var words []string
		for _, w := range strings.Fields(run) {
			if !nameStopwords[w] {
				words = append(words, w)
			}
		}
		if len(words) > 0 {
			params[ParamName] = cmdparse.Text(strings.Join(words, " "))
			break
		}
	}

	phone := strictPhonePattern.FindString(text)
	if phone == "" {
		phone = loosePhonePattern.FindString(text)
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		params[ParamPhone] = cmdparse.Text(phone)
	}

	if email := emailPattern.FindString(text); email != "" {
		params[ParamEmail] = cmdparse.Text(email)
	}

	var tags []string
	for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
		tags = append(tags, m[1])
	}
	if len(tags) > 0 {
		params[ParamTags] = cmdparse.List(tags)
	}
	return params
}
