// Package repository stores parsed matches.
package repository

import (
	"context"
	"time"

	"github.com/okian/touchline/internal/domain/model"
)

// Entry is a stored match. The raw documents are kept instead of the parsed
// tables so a stored match is re-parsed on read with the same pipeline.
type Entry struct {
	ID       string        `json:"id"`
	RunID    string        `json:"run_id"`
	ParsedAt time.Time     `json:"parsed_at"`
	Summary  model.Summary `json:"summary"`
	Events   []byte        `json:"events"`
	Metadata []byte        `json:"metadata"`
}

func (e Entry) validate() error {
	if e.ID == "" {
		return ErrInvalidEntry
	}
	return nil
}

// Store provides read/write access to parsed matches.
type Store interface {
	// Put adds or replaces a match.
	Put(ctx context.Context, e Entry) error

	// Get returns a match by id.
	// Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (Entry, error)

	// List returns all matches, oldest first.
	List(ctx context.Context) ([]Entry, error)

	// Delete removes a match.
	// Returns ErrNotFound if the id is unknown.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored matches.
	Count(ctx context.Context) (int, error)

	Close() error
}
