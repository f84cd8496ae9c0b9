package store

import (
	"sync"
	"time"
)

// idGenerator issues wall-clock millisecond ids for conversations and
// messages. Two calls can land in the same millisecond, so the previous id
// is tracked and bumped past; ids are strictly increasing per process.
type idGenerator struct {
	mu   sync.Mutex
	last int64
}

func (g *idGenerator) next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := time.Now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
