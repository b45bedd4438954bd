// Package name pulls a display name out of a free-text introduction.
package name

import (
	"regexp"
	"strings"
	"unicode"

	"heystack-be/pkg/store"
)

var (
	optOutPhrases = []string{"don't want", "prefer not", "skip", "no name"}

	myNameIs = regexp.MustCompile(`(?i)\bmy name is ([A-Za-z][A-Za-z\s'-]{0,30})`)
	iAm      = regexp.MustCompile(`(?i)\bi(?:'m| am) ([A-Za-z][A-Za-z\s'-]{0,30})`)
)

// Extract returns the name found in text, store.FriendName when the user opts
// out, or "" when nothing usable was said.
func Extract(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	lower := strings.ToLower(text)
	for _, p := range optOutPhrases {
		if strings.Contains(lower, p) {
			return store.FriendName
		}
	}

	for _, re := range []*regexp.Regexp{myNameIs, iAm} {
		if m := re.FindStringSubmatch(text); m != nil {
			return Title(strings.TrimSpace(m[1]))
		}
	}

	words := strings.Fields(text)
	if len(words) == 1 && isAlpha(words[0]) {
		return Title(words[0])
	}

	return ""
}

// Title upper-cases the first letter of every run of letters and lower-cases
// the rest, so "o'brien" becomes "O'Brien" and "ANNE-marie" "Anne-Marie".
func Title(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				sb.WriteRune(unicode.ToLower(r))
			} else {
				sb.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		sb.WriteRune(r)
		prevLetter = false
	}
	return sb.String()
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
