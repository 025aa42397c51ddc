// Package perf implements the two-tier performance short-circuit (§4.7):
// the rule engine (ordered regex list -> canned answer) and the semantic
// cache (vector similarity -> cached answer), composed by ProcessQuery.
package perf

import (
	"regexp"
	"strings"
)

// Rule is one ordered regex -> canned-answer entry (§4.7.1). Tag documents
// the rule's intent for observability; it plays no role in matching.
type Rule struct {
	Tag     string
	Pattern *regexp.Regexp
	Answer  string
}

// RuleEngine matches a lowercased, trimmed query against an ordered list of
// rules, returning the first match's answer.
type RuleEngine struct {
	rules []Rule
}

// NewRuleEngine returns an engine seeded with DefaultRules; callers append
// more with Register.
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{rules: append([]Rule{}, DefaultRules()...)}
}

// Register appends a rule to the end of the match order.
func (e *RuleEngine) Register(r Rule) {
	e.rules = append(e.rules, r)
}

// Match returns the first rule whose pattern matches query, case-
// insensitively, after lowercasing and trimming whitespace (§4.7.1).
func (e *RuleEngine) Match(query string) (Rule, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, r := range e.rules {
		if r.Pattern.MatchString(q) {
			return r, true
		}
	}
	return Rule{}, false
}

// DefaultRules returns the built-in rule set: greetings, identity,
// clear-history, thanks, goodbye, help (§4.7.1, expansion).
func DefaultRules() []Rule {
	return []Rule{
		{Tag: "greeting", Pattern: regexp.MustCompile(`^(hi|hello|hey|you good|yo)[!.,]?$`), Answer: "Hello! How can I help you today?"},
		{Tag: "identity", Pattern: regexp.MustCompile(`^(who are you|what are you|what is your name)\??$`), Answer: "I'm an AI assistant here to help answer your questions."},
		{Tag: "clear_history", Pattern: regexp.MustCompile(`^(clear|reset)( the)?( conversation| history| chat)?$`), Answer: "Starting a new conversation."},
		{Tag: "thanks", Pattern: regexp.MustCompile(`^(thanks|thank you|thx|ty)[!.]?$`), Answer: "You're welcome!"},
		{Tag: "goodbye", Pattern: regexp.MustCompile(`^(bye|goodbye|see you|see ya)[!.]?$`), Answer: "Goodbye! Have a great day."},
		{Tag: "help", Pattern: regexp.MustCompile(`^(help|what can you do)\??$`), Answer: "I can research, analyze, write, and answer questions about your data. Ask me anything."},
	}
}
