package session

import (
	"context"

	"github.com/nitrr/campus-assistant/internal/model"
)

// Repository defines structured persistence for conversation history.
type Repository interface {
	// Save persists the full history for a given session.
	// Replaces any previously stored history for that id.
	Save(ctx context.Context, id string, history []model.Message) error

	// Load retrieves the stored history for a given session.
	// Returns nil, nil if the session does not exist.
	Load(ctx context.Context, id string) ([]model.Message, error)

	// Delete removes the stored history for a given session.
	// Is a no-op if the session does not exist.
	Delete(ctx context.Context, id string) error
}
