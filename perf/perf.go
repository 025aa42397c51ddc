package perf

import "context"

// Result reports what the performance layer decided for a query.
type Result struct {
	Hit    bool
	Answer string
	Source string // "rule" or "cache"
}

// Layer composes the rule engine and semantic cache into the single
// short-circuit check the service runs before entering the graph (§4.7:
// rule engine first, then semantic cache; first hit wins).
type Layer struct {
	Rules  *RuleEngine
	Cache  *SemanticCache
	Enable struct {
		RuleEngine    bool
		SemanticCache bool
	}
}

// NewLayer returns a Layer with both tiers enabled by default (§6.5
// ENABLE_RULE_ENGINE / ENABLE_SEMANTIC_CACHE default true).
func NewLayer(rules *RuleEngine, cache *SemanticCache) *Layer {
	l := &Layer{Rules: rules, Cache: cache}
	l.Enable.RuleEngine = true
	l.Enable.SemanticCache = true
	return l
}

// ProcessQuery checks the rule engine, then the semantic cache, returning
// the first hit. Callers only fall through to the full supervisor graph
// when Result.Hit is false.
func (l *Layer) ProcessQuery(ctx context.Context, query string) Result {
	if l.Enable.RuleEngine && l.Rules != nil {
		if rule, ok := l.Rules.Match(query); ok {
			return Result{Hit: true, Answer: rule.Answer, Source: "rule"}
		}
	}
	if l.Enable.SemanticCache && l.Cache != nil {
		if answer, ok := l.Cache.Lookup(ctx, query); ok {
			return Result{Hit: true, Answer: answer, Source: "cache"}
		}
	}
	return Result{}
}
