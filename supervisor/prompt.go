package supervisor

import (
	"fmt"
	"strings"

	"github.com/supervisorrt/orchestrator/registry"
	"github.com/supervisorrt/orchestrator/state"
)

// planSchema is the JSON Schema for the planning LLM call's structured
// output (§6.4): {steps: [{worker, description}], reasoning}.
var planSchema = []byte(`{
  "type": "object",
  "properties": {
    "steps": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "worker": {"type": "string"},
          "description": {"type": "string"}
        },
        "required": ["worker", "description"]
      }
    },
    "reasoning": {"type": "string"}
  },
  "required": ["steps", "reasoning"]
}`)

// routeSchema is the JSON Schema for the routing LLM call's structured
// output (§6.4): {next, reasoning, should_replan}.
var routeSchema = []byte(`{
  "type": "object",
  "properties": {
    "next": {"type": "string"},
    "reasoning": {"type": "string"},
    "should_replan": {"type": "boolean"}
  },
  "required": ["next", "reasoning", "should_replan"]
}`)

func formatPlanningPrompt(snapshot []registry.Entry, maxSteps int) string {
	var b strings.Builder
	b.WriteString("You are the planning stage of a multi-agent supervisor. Break the user's request into an ordered list of steps, each assigned to one of the following workers:\n\n")
	for _, e := range snapshot {
		fmt.Fprintf(&b, "- %s: %s\n", e.Name, e.Description)
	}
	fmt.Fprintf(&b, "\nUse at most %d steps. Respond with structured JSON: {steps: [{worker, description}], reasoning}.\n", maxSteps)
	return b.String()
}

func formatRoutingPrompt(snapshot []registry.Entry, plan []state.TaskStep) string {
	var b strings.Builder
	b.WriteString("You are the routing stage of a multi-agent supervisor. Workers:\n\n")
	for _, e := range snapshot {
		fmt.Fprintf(&b, "- %s: %s\n", e.Name, e.Description)
	}
	b.WriteString("\nCurrent plan:\n")
	for i, step := range plan {
		fmt.Fprintf(&b, "%d. [%s] %s (%s)\n", i+1, statusEmoji(step.Status), step.Description, step.Worker)
	}
	b.WriteString("\nDecide which worker should run next, or \"FINISH\" if the plan is complete. Respond with structured JSON: {next, reasoning, should_replan}.\n")
	return b.String()
}

func statusEmoji(s state.StepStatus) string {
	switch s {
	case state.StepCompleted:
		return "✅"
	case state.StepFailed:
		return "❌"
	case state.StepSkipped:
		return "⏭"
	case state.StepInProgress:
		return "🔄"
	default:
		return "⏳"
	}
}
