// Package session holds conversation state for the lifetime of a chat and
// persists it: a human-readable transcript rewritten after every turn, and
// optionally a structured history in a Repository.
package session

import (
	"context"
	"fmt"

	"github.com/nitrr/campus-assistant/internal/model"
)

// Session owns the ordered message history of one conversation. It grows
// monotonically; messages are never truncated or rewritten.
type Session struct {
	id       string
	messages []model.Message
	repo     Repository
}

// New creates an empty in-memory session.
func New(id string) *Session {
	return &Session{id: id}
}

// NewWithRepository creates a session backed by repo, resuming any history
// previously stored under id.
func NewWithRepository(ctx context.Context, id string, repo Repository) (*Session, error) {
	stored, err := repo.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session: load %q: %w", id, err)
	}

	return &Session{id: id, messages: stored, repo: repo}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Append adds messages to the history.
func (s *Session) Append(msgs ...model.Message) {
	s.messages = append(s.messages, msgs...)
}

// Messages returns a copy of the history.
func (s *Session) Messages() []model.Message {
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the history.
func (s *Session) Len() int {
	return len(s.messages)
}

// Sync saves the full history to the repository, replacing whatever was
// stored before. It is a no-op for sessions without a repository.
func (s *Session) Sync(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	if err := s.repo.Save(ctx, s.id, s.Messages()); err != nil {
		return fmt.Errorf("session: save %q: %w", s.id, err)
	}

	return nil
}
