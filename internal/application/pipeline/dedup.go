package pipeline

import (
	"sync"
	"time"
)

// seenSet remembers already-processed paths so a duplicate detection event
// never starts a second pipeline run for the same physical file. Entries age
// out after a TTL and the set is capped, evicting oldest first, so it stays
// bounded for the life of the process.
type seenSet struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]time.Time
}

func newSeenSet(ttl time.Duration, max int) *seenSet {
	return &seenSet{
		ttl:     ttl,
		max:     max,
		entries: make(map[string]time.Time),
	}
}

func (s *seenSet) Contains(path string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	added, ok := s.entries[path]
	if !ok {
		return false
	}
	if now.Sub(added) > s.ttl {
		delete(s.entries, path)
		return false
	}
	return true
}

func (s *seenSet) Add(path string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for p, added := range s.entries {
		if now.Sub(added) > s.ttl {
			delete(s.entries, p)
		}
	}
	for len(s.entries) >= s.max {
		var oldestPath string
		var oldest time.Time
		for p, added := range s.entries {
			if oldestPath == "" || added.Before(oldest) {
				oldestPath, oldest = p, added
			}
		}
		delete(s.entries, oldestPath)
	}

	s.entries[path] = now
}

func (s *seenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
