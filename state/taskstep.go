package state

// maxResultRunes is the truncation bound for TaskStep.Result/Error (§3.2).
// Truncation happens on a rune boundary so multi-byte UTF-8 content (the
// default UserContext.Language is zh-CN) is never corrupted mid-codepoint.
const maxResultRunes = 200

// StepStatus is the lifecycle state of a single TaskStep.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
	StepSkipped    StepStatus = "skipped"
)

// Terminal reports whether a step is in a status the supervisor treats as
// done and will not reroute to again.
func (s StepStatus) Terminal() bool {
	switch s {
	case StepCompleted, StepFailed, StepSkipped:
		return true
	default:
		return false
	}
}

// TaskStep represents one step of a plan. Position in a TaskStep slice is
// execution order (§3.2).
type TaskStep struct {
	StepID      string
	Worker      string
	Description string
	Status      StepStatus
	Result      string
	Error       string
}

// Truncate copies s with Result/Error truncated to maxResultRunes, preserving
// rune boundaries. Safe to call repeatedly (idempotent once under the bound).
func (s TaskStep) Truncate() TaskStep {
	s.Result = truncateRunes(s.Result, maxResultRunes)
	s.Error = truncateRunes(s.Error, maxResultRunes)
	return s
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
