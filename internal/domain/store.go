package domain

// KVStore is the durable on-device key/value store.
// Read reports ok=false for a missing key.
type KVStore interface {
	Read(key string) (data []byte, ok bool, err error)
	Write(key string, data []byte) error
	Close() error
}
