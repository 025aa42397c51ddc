// Package checkpointer defines the Checkpointer capability (§6.1):
// save/load of a conversation snapshot keyed by thread id, so a supervisor
// run can resume a prior conversation's state. Grounded on
// goadesign-goa-ai's session.Store, adapted from run-lifecycle metadata to
// plain state snapshots — this runtime has no durable workflow to resume,
// only conversation state to persist across requests (§5 Non-goals).
package checkpointer

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Load when threadID has no saved snapshot.
var ErrNotFound = errors.New("checkpointer: thread not found")

// Snapshot is the persisted shape of a thread's conversation state. Callers
// marshal/unmarshal their own state.SupervisorState into Data; this package
// stays state-agnostic so it never imports the state package.
type Snapshot struct {
	ThreadID  string
	Data      []byte // caller-chosen encoding, typically JSON of state.SupervisorState
	UpdatedAt time.Time
}

// Checkpointer persists and retrieves conversation snapshots by thread id.
type Checkpointer interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, threadID string) (Snapshot, error)
	Delete(ctx context.Context, threadID string) error
}
