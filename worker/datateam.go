package worker

import (
	"context"
	"fmt"

	"github.com/supervisorrt/orchestrator/capability/chatmodel"
	"github.com/supervisorrt/orchestrator/state"
)

// DataTeamName is the registered name of the SQL subgraph worker (§4.9).
const DataTeamName = "DataTeam"

// maxSQLTrials bounds the generate/execute/retry loop before give_up
// (§4.9: bounded retry at 3 trials).
const maxSQLTrials = 3

// SQLExecutor runs a generated query against whatever store DataTeam is
// configured for and returns tabular/text results or an error.
type SQLExecutor interface {
	Execute(ctx context.Context, schema, query string) (string, error)
}

// dataTeamState is DataTeam's own nested state (§4.9), distinct from
// SupervisorState — it never leaves this worker's Execute call.
type dataTeamState struct {
	question    string
	schema      string
	sqlQuery    string
	queryResult string
	lastErr     string
	trials      int
}

// DataTeam answers data questions by generating SQL, executing it, and
// retrying on failure up to maxSQLTrials before giving up and reporting the
// failure back to the supervisor (§4.9).
type DataTeam struct {
	Model  chatmodel.Model
	SQL    SQLExecutor
	Schema string // static schema description passed to the SQL generator
}

// Name implements worker.Worker.
func (d *DataTeam) Name() string { return DataTeamName }

// Execute implements worker.Worker, running the generate_sql -> execute_sql
// -> route(retry/give_up/analyze_data) -> analyze_data subgraph internally.
func (d *DataTeam) Execute(ctx context.Context, s state.SupervisorState) (state.Update, error) {
	step, ok := CurrentStep(s)
	question := s.OriginalQuery
	if ok && step.Description != "" {
		question = step.Description
	}

	inner := dataTeamState{question: question, schema: d.Schema}

	for {
		if err := d.generateSQL(ctx, &inner); err != nil {
			return StandardResponse(s, DataTeamName, "", fmt.Errorf("sql generation failed: %w", err)), nil
		}
		result, err := d.SQL.Execute(ctx, inner.schema, inner.sqlQuery)
		inner.trials++
		if err == nil {
			inner.queryResult = result
			break
		}
		inner.lastErr = err.Error()
		if inner.trials >= maxSQLTrials {
			msg := fmt.Sprintf("I tried %d times but could not get a working query. Last error: %s", inner.trials, inner.lastErr)
			return StandardResponse(s, DataTeamName, msg, nil), nil
		}
		// loop again: retry with the error folded into the next generation
	}

	answer, err := d.analyze(ctx, inner)
	if err != nil {
		return StandardResponse(s, DataTeamName, "", fmt.Errorf("result analysis failed: %w", err)), nil
	}
	return StandardResponse(s, DataTeamName, answer, nil), nil
}

func (d *DataTeam) generateSQL(ctx context.Context, inner *dataTeamState) error {
	prompt := fmt.Sprintf("Schema:\n%s\n\nQuestion: %s", inner.schema, inner.question)
	if inner.lastErr != "" {
		prompt += fmt.Sprintf("\n\nThe previous query failed with: %s\nPrevious query: %s\nWrite a corrected query.", inner.lastErr, inner.sqlQuery)
	}
	resp, err := d.Model.Invoke(ctx, chatmodel.Request{
		Temperature: 0,
		Messages: []chatmodel.Message{
			{Role: chatmodel.RoleSystem, Content: "Write a single SQL query that answers the question. Reply with only the query."},
			{Role: chatmodel.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return err
	}
	inner.sqlQuery = resp.Content
	return nil
}

func (d *DataTeam) analyze(ctx context.Context, inner dataTeamState) (string, error) {
	resp, err := d.Model.Invoke(ctx, chatmodel.Request{
		Temperature: 0.2,
		Messages: []chatmodel.Message{
			{Role: chatmodel.RoleSystem, Content: "Summarize the query result in plain language that answers the original question."},
			{Role: chatmodel.RoleUser, Content: fmt.Sprintf("Question: %s\nQuery: %s\nResult: %s", inner.question, inner.sqlQuery, inner.queryResult)},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
