package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supervisorrt/orchestrator/capability/checkpointer"
	"github.com/supervisorrt/orchestrator/capability/embedder"
	"github.com/supervisorrt/orchestrator/graph"
	"github.com/supervisorrt/orchestrator/perf"
	"github.com/supervisorrt/orchestrator/state"
)

// memCheckpointer is a minimal in-memory checkpointer.Checkpointer.
type memCheckpointer struct {
	mu   sync.Mutex
	data map[string]checkpointer.Snapshot
}

func newMemCheckpointer() *memCheckpointer {
	return &memCheckpointer{data: map[string]checkpointer.Snapshot{}}
}

func (c *memCheckpointer) Save(_ context.Context, snap checkpointer.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[snap.ThreadID] = snap
	return nil
}

func (c *memCheckpointer) Load(_ context.Context, threadID string) (checkpointer.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.data[threadID]
	if !ok {
		return checkpointer.Snapshot{}, checkpointer.ErrNotFound
	}
	return snap, nil
}

func (c *memCheckpointer) Delete(_ context.Context, threadID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, threadID)
	return nil
}

// memStore is a minimal in-memory kvstore.Store, mirroring perf's test fake.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func newLayer() *perf.Layer {
	return perf.NewLayer(perf.NewRuleEngine(), perf.NewSemanticCache(newMemStore(), embedder.NewHashProjection(32)))
}

func singleStepGraph(answer string) *graph.Graph {
	supervisor := func(_ context.Context, s state.SupervisorState) (state.Update, error) {
		if len(s.TaskPlan) == 0 {
			zero := 0
			worker := "Worker"
			return state.Update{
				Next:             &worker,
				CurrentStepIndex: &zero,
				TaskPlan:         []state.TaskStep{{StepID: "1", Worker: "Worker", Status: state.StepPending}},
			}, nil
		}
		finish := state.Finish
		return state.Update{Next: &finish}, nil
	}
	worker := func(_ context.Context, s state.SupervisorState) (state.Update, error) {
		next := "supervisor"
		plan := []state.TaskStep{{StepID: "1", Worker: "Worker", Status: state.StepCompleted}}
		return state.Update{
			Next:     &next,
			TaskPlan: plan,
			Messages: []state.Message{state.NewAssistantMessage("Worker", answer)},
		}, nil
	}
	return graph.New(supervisor, map[string]graph.NodeFunc{"Worker": worker})
}

func failingGraph() *graph.Graph {
	supervisor := func(_ context.Context, _ state.SupervisorState) (state.Update, error) {
		return state.Update{}, errors.New("boom")
	}
	return graph.New(supervisor, map[string]graph.NodeFunc{})
}

func TestService_Run_ReturnsRuleHitWithoutRunningGraph(t *testing.T) {
	s := New(newLayer(), failingGraph(), nil)
	result, err := s.Run(context.Background(), "hello", "thread-1", state.NewUserContext())
	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, "rule", result.Source)
}

func TestService_Run_RunsGraphOnMiss(t *testing.T) {
	s := New(newLayer(), singleStepGraph("the answer"), nil)
	result, err := s.Run(context.Background(), "what is the meaning of life", "thread-1", state.NewUserContext())
	require.NoError(t, err)
	assert.Equal(t, "the answer", result.Answer)
	assert.Equal(t, "graph", result.Source)
	assert.False(t, result.Cached)
}

func TestService_Run_PropagatesGraphError(t *testing.T) {
	s := New(newLayer(), failingGraph(), nil)
	_, err := s.Run(context.Background(), "what is the meaning of life", "thread-1", state.NewUserContext())
	assert.Error(t, err)
}

func TestService_RunStream_EventOrderOnRuleHit(t *testing.T) {
	s := New(newLayer(), failingGraph(), nil)
	var events []Event
	err := s.RunStream(context.Background(), "hello", "thread-1", state.NewUserContext(), func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, EventStart, events[0].Type)
	assert.Equal(t, EventAnswer, events[1].Type)
	assert.Equal(t, EventDone, events[2].Type)
}

func TestService_RunStream_EventOrderOnGraphRun(t *testing.T) {
	s := New(newLayer(), singleStepGraph("final answer"), nil)
	var events []Event
	err := s.RunStream(context.Background(), "what is the meaning of life", "thread-1", state.NewUserContext(), func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)
	require.True(t, len(events) >= 2)
	assert.Equal(t, EventStart, events[0].Type)
	assert.Equal(t, EventDone, events[len(events)-1].Type)

	foundAnswer := false
	for _, e := range events[1 : len(events)-1] {
		if e.Type == EventAnswer {
			foundAnswer = true
			assert.Equal(t, "final answer", e.Content)
		}
	}
	assert.True(t, foundAnswer, "expected an answer event carrying the worker's message")
}

func TestService_RunStream_EmitsErrorLastOnGraphFailure(t *testing.T) {
	s := New(newLayer(), failingGraph(), nil)
	var events []Event
	err := s.RunStream(context.Background(), "what is the meaning of life", "thread-1", state.NewUserContext(), func(e Event) {
		events = append(events, e)
	})
	assert.Error(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventStart, events[0].Type)
	assert.Equal(t, EventError, events[1].Type)
}

func TestLastAssistantContent_ReturnsMostRecent(t *testing.T) {
	s := state.New("q", state.NewUserContext())
	s = state.Reduce(s, state.Update{Messages: []state.Message{
		{Role: state.RoleAssistant, Author: "A", Content: "first"},
		{Role: state.RoleAssistant, Author: "B", Content: "second"},
	}})
	assert.Equal(t, "second", lastAssistantContent(s))
}

func TestLastAssistantContent_EmptyWithNoAssistantMessages(t *testing.T) {
	s := state.New("q", state.NewUserContext())
	assert.Equal(t, "", lastAssistantContent(s))
}

func TestService_Run_PersistsAndResumesConversationAcrossCalls(t *testing.T) {
	cp := newMemCheckpointer()
	s := New(newLayer(), singleStepGraph("first answer"), cp)

	_, err := s.Run(context.Background(), "what is the meaning of life", "thread-42", state.NewUserContext())
	require.NoError(t, err)

	snap, loadErr := cp.Load(context.Background(), "thread-42")
	require.NoError(t, loadErr)
	var saved state.SupervisorState
	require.NoError(t, json.Unmarshal(snap.Data, &saved))
	assert.GreaterOrEqual(t, len(saved.Messages), 2, "expects the user turn and the worker's answer persisted")

	s2 := New(newLayer(), singleStepGraph("second answer"), cp)
	resumed := s2.seedState(context.Background(), "a follow-up question", "thread-42", state.NewUserContext())
	assert.GreaterOrEqual(t, len(resumed.Messages), 3, "resumed state must carry forward the prior turn's messages")
	assert.Equal(t, "a follow-up question", resumed.OriginalQuery)
}

func TestService_SeedState_FreshWithoutCheckpointer(t *testing.T) {
	s := New(newLayer(), singleStepGraph("x"), nil)
	st := s.seedState(context.Background(), "hi", "thread-1", state.NewUserContext())
	assert.Len(t, st.Messages, 1)
}

func TestService_SeedState_FreshOnLoadMiss(t *testing.T) {
	s := New(newLayer(), singleStepGraph("x"), newMemCheckpointer())
	st := s.seedState(context.Background(), "hi", "unseen-thread", state.NewUserContext())
	assert.Len(t, st.Messages, 1)
}

func TestDetachedContext_StripsDeadlineAndCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, ctx.Err())

	d := detachedContext(ctx)
	assert.NoError(t, d.Err())
	_, ok := d.Deadline()
	assert.False(t, ok)
	assert.Nil(t, d.Done())
}
