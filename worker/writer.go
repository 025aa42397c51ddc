package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/supervisorrt/orchestrator/capability/chatmodel"
	"github.com/supervisorrt/orchestrator/state"
)

// WriterName is the registered name of the built-in writer worker (§4.4,
// priority 5, temperature 0.7).
const WriterName = "Writer"

// Writer consolidates the assistant messages authored earlier in the run
// into a single polished final answer.
type Writer struct {
	Model chatmodel.Model
}

// Name implements worker.Worker.
func (w *Writer) Name() string { return WriterName }

// Execute implements worker.Worker.
func (w *Writer) Execute(ctx context.Context, s state.SupervisorState) (state.Update, error) {
	var prior strings.Builder
	for _, m := range s.Messages {
		if m.Role == state.RoleAssistant && m.Author != "" && m.Author != WriterName {
			fmt.Fprintf(&prior, "[%s]: %s\n\n", m.Author, m.Content)
		}
	}
	if prior.Len() == 0 {
		prior.WriteString("(no prior worker output; answer directly)")
	}

	resp, err := w.Model.Invoke(ctx, chatmodel.Request{
		Temperature: 0.7,
		Messages: []chatmodel.Message{
			{Role: chatmodel.RoleSystem, Content: "Combine the findings below into one clear, well-organized answer to the user's question. Do not mention that you are combining other workers' output."},
			{Role: chatmodel.RoleUser, Content: fmt.Sprintf("Question: %s\n\nFindings:\n%s", s.OriginalQuery, prior.String())},
		},
	})
	if err != nil {
		return StandardResponse(s, WriterName, "", fmt.Errorf("writing failed: %w", err)), nil
	}
	return StandardResponse(s, WriterName, resp.Content, nil), nil
}
