package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeMessages_AppendAndDedupeByID(t *testing.T) {
	s := SupervisorState{}
	s = Reduce(s, Update{Messages: []Message{{ID: "a", Content: "first"}}})
	s = Reduce(s, Update{Messages: []Message{{Content: "second"}}})
	require.Len(t, s.Messages, 2)

	s = Reduce(s, Update{Messages: []Message{{ID: "a", Content: "replaced"}}})
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "replaced", s.Messages[0].Content)
}

func TestMergeMessages_AssignsDistinctSyntheticIDs(t *testing.T) {
	s := SupervisorState{}
	s = Reduce(s, Update{Messages: []Message{{Content: "one"}}})
	s = Reduce(s, Update{Messages: []Message{{Content: "two"}}})
	require.Len(t, s.Messages, 2)
	assert.NotEmpty(t, s.Messages[0].ID)
	assert.NotEqual(t, s.Messages[0].ID, s.Messages[1].ID)
}

func TestMergeNext_LastWriterWins(t *testing.T) {
	s := SupervisorState{Next: "General"}
	worker := "Researcher"
	s = Reduce(s, Update{Next: &worker})
	assert.Equal(t, "Researcher", s.Next)
}

func TestMergeNext_NilLeavesUnchanged(t *testing.T) {
	s := SupervisorState{Next: "General"}
	s = Reduce(s, Update{})
	assert.Equal(t, "General", s.Next)
}

func TestMergeTaskPlan_WholeListReplace(t *testing.T) {
	s := SupervisorState{TaskPlan: []TaskStep{{StepID: "1"}}}
	s = Reduce(s, Update{TaskPlan: []TaskStep{{StepID: "a"}, {StepID: "b"}}})
	require.Len(t, s.TaskPlan, 2)
}

func TestClearTaskPlan_ClearsOnlyPlan(t *testing.T) {
	s := SupervisorState{
		TaskPlan:       []TaskStep{{StepID: "1"}},
		IterationCount: 3,
		ThinkingSteps:  []ThinkingStep{{Content: "kept"}},
	}
	s = Reduce(s, ClearTaskPlan())
	assert.Empty(t, s.TaskPlan)
	assert.Equal(t, 3, s.IterationCount)
	require.Len(t, s.ThinkingSteps, 1)
}

func TestMergeThinkingSteps_Append(t *testing.T) {
	s := SupervisorState{}
	s = Reduce(s, Update{ThinkingSteps: []ThinkingStep{{Content: "a"}}})
	s = Reduce(s, Update{ThinkingSteps: []ThinkingStep{{Content: "b"}}})
	require.Len(t, s.ThinkingSteps, 2)
}

func TestMergeMetadata_ShallowMerge(t *testing.T) {
	s := SupervisorState{Metadata: map[string]any{"a": 1, "b": 1}}
	s = Reduce(s, Update{Metadata: map[string]any{"b": 2, "c": 3}})
	assert.Equal(t, map[string]any{"a": 1, "b": 2, "c": 3}, s.Metadata)
}

func TestIncIteration(t *testing.T) {
	s := SupervisorState{IterationCount: 2}
	s = Reduce(s, IncIteration(s))
	assert.Equal(t, 3, s.IterationCount)
}

func TestInvariants_FlagsOutOfRangeStepIndex(t *testing.T) {
	s := SupervisorState{CurrentStepIndex: 5, TaskPlan: []TaskStep{{}}}
	problems := s.Invariants(DefaultMaxIterations, DefaultMaxTaskSteps, map[string]struct{}{})
	assert.Contains(t, problems, "current_step_index out of range")
}

func TestInvariants_FlagsIterationCapBreach(t *testing.T) {
	s := SupervisorState{IterationCount: 11}
	problems := s.Invariants(DefaultMaxIterations, DefaultMaxTaskSteps, map[string]struct{}{})
	assert.Contains(t, problems, "iteration_count exceeds MAX_ITERATIONS")
}

func TestInvariants_FlagsUnregisteredNext(t *testing.T) {
	s := SupervisorState{Next: "Unknown"}
	problems := s.Invariants(DefaultMaxIterations, DefaultMaxTaskSteps, map[string]struct{}{"General": {}})
	assert.Contains(t, problems, "next names an unregistered worker")
}

func TestInvariants_AllowsFinishAndEmptyNext(t *testing.T) {
	for _, next := range []string{"", Finish} {
		s := SupervisorState{Next: next}
		problems := s.Invariants(DefaultMaxIterations, DefaultMaxTaskSteps, map[string]struct{}{})
		assert.Empty(t, problems)
	}
}

func TestNew_SeedsUserMessage(t *testing.T) {
	s := New("hello", NewUserContext())
	require.Len(t, s.Messages, 1)
	assert.Equal(t, RoleUser, s.Messages[0].Role)
	assert.Equal(t, "hello", s.OriginalQuery)
	assert.Equal(t, DefaultLanguage, s.UserContext.Language)
}
