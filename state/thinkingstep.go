package state

// ThinkingKind categorizes a ThinkingStep audit entry.
type ThinkingKind string

const (
	ThinkingPlanning   ThinkingKind = "planning"
	ThinkingReasoning  ThinkingKind = "reasoning"
	ThinkingDecision   ThinkingKind = "decision"
	ThinkingReflection ThinkingKind = "reflection"
)

// ThinkingStep is an append-only audit entry. It is never consulted for
// control flow (§3.3) — only for observability/debugging.
type ThinkingStep struct {
	Kind      ThinkingKind
	Content   string
	Timestamp float64
	Worker    string
}
