package storage

// Store is the process-local key-value store backing all persisted
// collections. Values are whole-collection JSON documents: writers read the
// full value, mutate in memory, and replace it on every save. There is no
// partial update, and no coordination between separate processes writing
// the same key (last writer wins).
type Store interface {
	// Get returns the value stored under key. ok is false when the key
	// is absent; err reports backend failures only.
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}
