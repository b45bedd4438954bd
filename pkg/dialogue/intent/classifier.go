package intent

import (
	"strings"

	"heystack-be/pkg/store"
)

// Result is the outcome of one classification
type Result struct {
	Intent Intent
	Rule   string // name of the rule that fired, empty for the default
}

// Classifier evaluates its rules in order; the first match wins
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier over the given rules, or DefaultRules
// when none are passed
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify returns the intent of text in the context of s. Text is
// lower-cased and trimmed first. A matching rule's Effect is applied to s.
func (c *Classifier) Classify(text string, s *store.Session) Result {
	txt := Normalize(text)
	for _, r := range c.rules {
		if !r.Match(txt, s) {
			continue
		}
		if r.Effect != nil {
			r.Effect(s)
		}
		return Result{Intent: r.Intent, Rule: r.Name}
	}
	return Result{Intent: Question}
}

// Rules returns a copy of the rule table in evaluation order
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Normalize lower-cases and trims text the way every rule expects it
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
