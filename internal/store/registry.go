package store

// Registry is an immutable snapshot of chunk metadata keyed by chunk ID.
// It is built alongside the lexical index from the same corpus slice and
// published with it in a single swap, so the two can never disagree about
// which chunks exist. Lookups are safe for concurrent use.
type Registry struct {
	byID  map[string]int
	order []Chunk
}

// NewRegistry builds a registry from a corpus slice. Slice order is the
// canonical insertion order used for deterministic tie-breaking.
func NewRegistry(chunks []Chunk) *Registry {
	r := &Registry{
		byID:  make(map[string]int, len(chunks)),
		order: make([]Chunk, len(chunks)),
	}
	copy(r.order, chunks)
	for i, c := range chunks {
		r.byID[c.ChunkID] = i
	}
	return r
}

// Get returns the chunk for an ID.
func (r *Registry) Get(chunkID string) (Chunk, bool) {
	i, ok := r.byID[chunkID]
	if !ok {
		return Chunk{}, false
	}
	return r.order[i], true
}

// Rank returns the insertion rank of a chunk ID, or -1 if unknown.
func (r *Registry) Rank(chunkID string) int {
	i, ok := r.byID[chunkID]
	if !ok {
		return -1
	}
	return i
}

// Contains reports whether the ID is registered.
func (r *Registry) Contains(chunkID string) bool {
	_, ok := r.byID[chunkID]
	return ok
}

// Len returns the number of registered chunks.
func (r *Registry) Len() int {
	return len(r.order)
}

// All returns the chunks in insertion order. The returned slice is
// shared; callers must not mutate it.
func (r *Registry) All() []Chunk {
	return r.order
}
