package dusage

import "sync"

// FileID identifies a physical file. Hard-linked paths share one.
//
// Inode numbers are only unique within a device, so the pair is the key:
// a bare inode number would conflate files on different mounts.
type FileID struct {
	Dev uint64
	Ino uint64
}

// defaultRegistryCapacity sizes the registry for the common case of a
// tree with few hard links.
const defaultRegistryCapacity = 64

// registry records the file identities already accounted during one
// traversal. It only grows; a traversal never un-counts a file.
//
// The mutex makes it safe to share between fastwalk workers in summarize
// mode; the sequential engine holds it uncontended.
type registry struct {
	mu  sync.Mutex
	ids map[FileID]struct{}
}

// newRegistry creates an empty registry with the given capacity hint.
func newRegistry(capacity int) *registry {
	if capacity <= 0 {
		capacity = defaultRegistryCapacity
	}

	return &registry{ids: make(map[FileID]struct{}, capacity)}
}

// contains reports whether id has been recorded.
func (r *registry) contains(id FileID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.ids[id]

	return ok
}

// insert records id. Recording an already-present id is a no-op.
func (r *registry) insert(id FileID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ids[id] = struct{}{}
}

// seen records id and reports whether it was already present, as a
// single step. Concurrent callers with the same id see exactly one
// false, so a hard-linked file is accounted by exactly one worker.
func (r *registry) seen(id FileID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[id]; ok {
		return true
	}

	r.ids[id] = struct{}{}

	return false
}
