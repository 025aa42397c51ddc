package state

import "strconv"

// Update is a partial SupervisorState as returned by a graph node. Every
// field is optional. An empty Messages, ThinkingSteps or Metadata means
// "no change"; a nil TaskPlan means "no change" while a non-nil empty one
// replaces the plan. Next, CurrentStepIndex, OriginalQuery, UserContext,
// CurrentWorker and IterationCount are pointers so that nil ("not
// provided") is distinct from "set to the zero value".
type Update struct {
	Messages      []Message
	TaskPlan      []TaskStep
	ThinkingSteps []ThinkingStep
	Metadata      map[string]any

	Next             *string
	CurrentStepIndex *int
	OriginalQuery    *string
	UserContext      *UserContext
	CurrentWorker    *string
	IterationCount   *int
}

// field merges current and an Update into a new SupervisorState; the name
// matches §3.5's reducer column so DESIGN.md can point at this table 1:1.
type field func(SupervisorState, Update) SupervisorState

var fieldReducers = []field{
	mergeMessages,      // append-and-dedupe-by-id
	mergeNext,          // last-writer
	mergeTaskPlan,      // last-writer (whole list)
	mergeStepIndex,     // last-writer
	mergeOriginalQuery, // last-writer
	mergeUserContext,   // last-writer
	mergeCurrentWorker, // last-writer
	mergeIterationCnt,  // last-writer
	mergeThinkingSteps, // append
	mergeMetadata,      // shallow-merge
}

// Reduce applies update to current and returns the new state. It is the
// only way SupervisorState ever changes; nodes never mutate state directly.
func Reduce(current SupervisorState, update Update) SupervisorState {
	next := current
	for _, merge := range fieldReducers {
		next = merge(next, update)
	}
	return next
}

func mergeMessages(s SupervisorState, u Update) SupervisorState {
	if len(u.Messages) == 0 {
		return s
	}
	s.Messages = append([]Message(nil), s.Messages...)
	byID := make(map[string]int, len(s.Messages))
	for i, m := range s.Messages {
		if m.ID != "" {
			byID[m.ID] = i
		}
	}
	for _, m := range u.Messages {
		if m.ID == "" {
			m.ID = s.nextSyntheticID()
		}
		if idx, ok := byID[m.ID]; ok {
			s.Messages[idx] = m
			continue
		}
		s.Messages = append(s.Messages, m)
		byID[m.ID] = len(s.Messages) - 1
	}
	return s
}

func (s *SupervisorState) nextSyntheticID() string {
	s.nextMsgSeq++
	return "msg-" + strconv.Itoa(s.nextMsgSeq)
}

func mergeNext(s SupervisorState, u Update) SupervisorState {
	if u.Next != nil {
		s.Next = *u.Next
	}
	return s
}

func mergeTaskPlan(s SupervisorState, u Update) SupervisorState {
	if u.TaskPlan != nil {
		s.TaskPlan = u.TaskPlan
	}
	return s
}

func mergeStepIndex(s SupervisorState, u Update) SupervisorState {
	if u.CurrentStepIndex != nil {
		s.CurrentStepIndex = *u.CurrentStepIndex
	}
	return s
}

func mergeOriginalQuery(s SupervisorState, u Update) SupervisorState {
	if u.OriginalQuery != nil {
		s.OriginalQuery = *u.OriginalQuery
	}
	return s
}

func mergeUserContext(s SupervisorState, u Update) SupervisorState {
	if u.UserContext != nil {
		s.UserContext = *u.UserContext
	}
	return s
}

func mergeCurrentWorker(s SupervisorState, u Update) SupervisorState {
	if u.CurrentWorker != nil {
		s.CurrentWorker = *u.CurrentWorker
	}
	return s
}

func mergeIterationCnt(s SupervisorState, u Update) SupervisorState {
	if u.IterationCount != nil {
		s.IterationCount = *u.IterationCount
	}
	return s
}

func mergeThinkingSteps(s SupervisorState, u Update) SupervisorState {
	if len(u.ThinkingSteps) == 0 {
		return s
	}
	s.ThinkingSteps = append(s.ThinkingSteps, u.ThinkingSteps...)
	return s
}

func mergeMetadata(s SupervisorState, u Update) SupervisorState {
	if len(u.Metadata) == 0 {
		return s
	}
	merged := make(map[string]any, len(s.Metadata)+len(u.Metadata))
	for k, v := range s.Metadata {
		merged[k] = v
	}
	for k, v := range u.Metadata {
		merged[k] = v
	}
	s.Metadata = merged
	return s
}

// IncIteration returns an Update that bumps iteration_count by one relative
// to current, the shape every supervisor plan/route pass emits (§4.5).
func IncIteration(current SupervisorState) Update {
	n := current.IterationCount + 1
	return Update{IterationCount: &n}
}

// ClearTaskPlan returns an Update that resets only task_plan, the resolved
// shape of a should_replan signal (§9 Open Question: should_replan clears
// task_plan alone, leaving thinking_steps and iteration_count untouched).
func ClearTaskPlan() Update {
	return Update{TaskPlan: []TaskStep{}}
}
