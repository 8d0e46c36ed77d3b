package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/linguaquest/dialogue-engine/pkg/dialogue"
)

// ProfileExecutor adapts a ProgressStore to the session's ActionExecutor
// boundary: every action the session decodes is applied to one learner
// profile.
type ProfileExecutor struct {
	store     ProgressStore
	profileID uuid.UUID
}

// NewProfileExecutor creates an executor bound to the given profile.
func NewProfileExecutor(store ProgressStore, profileID uuid.UUID) *ProfileExecutor {
	return &ProfileExecutor{
		store:     store,
		profileID: profileID,
	}
}

func (e *ProfileExecutor) Execute(ctx context.Context, action *dialogue.Action) error {
	return e.store.Apply(ctx, e.profileID, action)
}
