package registry

import (
	"context"
	"errors"

	"slide2pdf/internal/model"
)

var ErrNotFound = errors.New("artifact not found")

// Registry maps artifact identifiers to files waiting for a single retrieval.
// Entries disappear either when claimed or when their TTL expires, whichever
// comes first.
type Registry interface {
	// Put registers an artifact under its ID.
	Put(ctx context.Context, art model.Artifact) error
	// Claim removes the entry and returns it. A second claim for the same
	// ID returns ErrNotFound. Claiming does not unlink the file; the caller
	// deletes it after serving.
	Claim(ctx context.Context, kind model.ArtifactKind, id string) (*model.Artifact, error)
	// Close releases eviction resources.
	Close()
}
