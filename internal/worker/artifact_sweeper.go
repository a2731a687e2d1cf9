package worker

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// sweepGrace keeps files around a little past the TTL so a claim racing the
// sweep never loses its file mid-download.
const sweepGrace = 30 * time.Second

// ArtifactSweeper periodically removes artifact files older than the TTL.
// The memory registry unlinks files itself on eviction; the sweeper covers
// the redis backend (whose keys expire server-side) and anything orphaned by
// a crash.
type ArtifactSweeper struct {
	dir      string
	ttl      time.Duration
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewArtifactSweeper(dir string, ttl, interval time.Duration) *ArtifactSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ArtifactSweeper{
		dir:      dir,
		ttl:      ttl,
		interval: interval,
	}
}

func (s *ArtifactSweeper) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	sweepCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *ArtifactSweeper) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *ArtifactSweeper) sweep() {
	cutoff := time.Now().Add(-(s.ttl + sweepGrace))

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("sweep read artifacts dir failed: %v", err)
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("sweep remove %s failed: %v", path, err)
		}
	}
}
