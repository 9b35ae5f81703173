package cache

import (
	"sync"
)

// Snapshot holds the latest serialized document for concurrent readers.
//
// One writer publishes whole documents; any number of readers copy the
// current slice header. The lock guards only the swap, never I/O or
// serialization. Published bytes are never modified.
type Snapshot struct {
	mu      sync.RWMutex
	doc     []byte
	version uint64
}

// New returns an empty cache.
func New() *Snapshot { return &Snapshot{} }

// Read returns the current document. ok is false until the first Publish.
// Callers must not modify the returned bytes.
func (s *Snapshot) Read() (doc []byte, ok bool) {
	s.mu.RLock()
	doc = s.doc
	s.mu.RUnlock()
	return doc, doc != nil
}

// ReadVersion is Read plus the version that document was published under.
func (s *Snapshot) ReadVersion() (doc []byte, version uint64, ok bool) {
	s.mu.RLock()
	doc, version = s.doc, s.version
	s.mu.RUnlock()
	return doc, version, doc != nil
}

// Publish replaces the current document and returns its version. Versions
// start at 1 and only increase. A nil doc is ignored so the cache never goes
// back to empty.
func (s *Snapshot) Publish(doc []byte) uint64 {
	if doc == nil {
		return s.Version()
	}
	s.mu.Lock()
	s.doc = doc
	s.version++
	v := s.version
	s.mu.Unlock()
	return v
}

// Version is the number of documents published so far.
func (s *Snapshot) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
