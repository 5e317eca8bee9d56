package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/futures-flipper/internal/model"
)

// Memory is an in-process store. State is lost on restart.
type Memory struct {
	mu          sync.Mutex
	signal      model.Signal
	transitions map[uuid.UUID]*TransitionRecord
	now         func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		transitions: make(map[uuid.UUID]*TransitionRecord),
		now:         time.Now,
	}
}

func (m *Memory) LoadLastSignal(ctx context.Context) (model.Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signal, nil
}

func (m *Memory) SaveLastSignal(ctx context.Context, s model.Signal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signal = s
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) BeginTransition(ctx context.Context, id uuid.UUID, direction model.Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[id] = &TransitionRecord{
		ID:        id,
		Direction: direction,
		State:     "idle",
		StartedAt: m.now(),
	}
	return nil
}

func (m *Memory) UpdateTransition(ctx context.Context, id uuid.UUID, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.transitions[id]; ok {
		r.State = state
	}
	return nil
}

func (m *Memory) FinishTransition(ctx context.Context, id uuid.UUID, state string, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.transitions[id]; ok {
		finished := m.now()
		r.State = state
		r.Error = errMsg
		r.FinishedAt = &finished
	}
	return nil
}

// UnfinishedTransitions returns entries with no finish time, oldest first.
func (m *Memory) UnfinishedTransitions(ctx context.Context) ([]TransitionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []TransitionRecord
	for _, r := range m.transitions {
		if !r.Finished() {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

// Transition returns a copy of one journal entry.
func (m *Memory) Transition(id uuid.UUID) (TransitionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.transitions[id]
	if !ok {
		return TransitionRecord{}, false
	}
	return *r, true
}
