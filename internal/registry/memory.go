package registry

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"slide2pdf/internal/model"
)

type memoryEntry struct {
	artifact model.Artifact
	timer    *time.Timer
}

// MemoryRegistry keeps artifacts in-process. Each entry carries its own
// eviction timer; eviction unlinks the artifact file as well, since nobody
// will ever claim it.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	closed  bool
}

func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MemoryRegistry{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
	}
}

func (r *MemoryRegistry) Put(_ context.Context, art model.Artifact) error {
	key := entryKey(art.Kind, art.ID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.entries[key] = &memoryEntry{
		artifact: art,
		timer: time.AfterFunc(r.ttl, func() {
			r.evict(key)
		}),
	}
	return nil
}

func (r *MemoryRegistry) Claim(_ context.Context, kind model.ArtifactKind, id string) (*model.Artifact, error) {
	key := entryKey(kind, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	entry.timer.Stop()
	delete(r.entries, key)
	art := entry.artifact
	return &art, nil
}

func (r *MemoryRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for key, entry := range r.entries {
		entry.timer.Stop()
		delete(r.entries, key)
	}
}

func (r *MemoryRegistry) evict(key string) {
	r.mu.Lock()
	entry, ok := r.entries[key]
	if ok {
		delete(r.entries, key)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	if err := os.Remove(entry.artifact.Path); err != nil && !os.IsNotExist(err) {
		log.Printf("evict artifact %s failed: %v", entry.artifact.ID, err)
	}
}

func entryKey(kind model.ArtifactKind, id string) string {
	return string(kind) + ":" + id
}
