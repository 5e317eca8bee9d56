package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/futures-flipper/internal/model"
)

// TransitionRecord is one journal entry.
type TransitionRecord struct {
	ID         uuid.UUID
	Direction  model.Direction
	State      string
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time // nil while the transition is in flight or was interrupted
}

// Finished reports whether the transition ran to an end, successful or not.
func (r TransitionRecord) Finished() bool {
	return r.FinishedAt != nil
}
