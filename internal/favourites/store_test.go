package favourites

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/wubba/internal/domain"
)

// memKV is an in-memory domain.KVStore with injectable failures.
type memKV struct {
	mu       sync.Mutex
	data     map[string][]byte
	writes   int
	readErr  error
	writeErr error
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Read(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, false, m.readErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Write(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memKV) Close() error { return nil }

func (m *memKV) get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data[key])
}

func (m *memKV) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, kv domain.KVStore) *Store {
	t.Helper()
	s := NewStore(kv, quietLogger())
	t.Cleanup(s.Close)
	s.Load()
	return s
}

func TestStoreLoad(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		s := newTestStore(t, newMemKV())
		assert.Zero(t, s.Len())
	})

	t.Run("persisted ids", func(t *testing.T) {
		kv := newMemKV()
		kv.data[StorageKey] = []byte("[3,1,2]")
		s := newTestStore(t, kv)
		assert.Equal(t, []int{1, 2, 3}, s.IDs())
		assert.True(t, s.IsFavourite(2))
	})

	t.Run("corrupt data degrades to empty", func(t *testing.T) {
		kv := newMemKV()
		kv.data[StorageKey] = []byte("{not json")
		s := newTestStore(t, kv)
		assert.Zero(t, s.Len())
	})

	t.Run("wrong shape degrades to empty", func(t *testing.T) {
		kv := newMemKV()
		kv.data[StorageKey] = []byte(`{"ids":[1]}`)
		s := newTestStore(t, kv)
		assert.Zero(t, s.Len())
	})

	t.Run("read error degrades to empty", func(t *testing.T) {
		kv := newMemKV()
		kv.readErr = errors.New("disk on fire")
		s := newTestStore(t, kv)
		assert.Zero(t, s.Len())
	})
}

func TestStoreToggleTwiceRestoresAndPersists(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv)

	assert.True(t, s.Toggle(7))
	assert.True(t, s.IsFavourite(7))
	s.Flush()
	assert.Equal(t, "[7]", kv.get(StorageKey))

	assert.False(t, s.Toggle(7))
	assert.False(t, s.IsFavourite(7))
	s.Flush()
	assert.Equal(t, "[]", kv.get(StorageKey))
}

func TestStoreToggleIsImmediatelyVisible(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv)

	for id := 1; id <= 20; id++ {
		s.Toggle(id)
		require.True(t, s.IsFavourite(id))
	}
	s.Flush()
	assert.Equal(t, 20, kv.writeCount())
	assert.Equal(t, "[1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19,20]", kv.get(StorageKey))
}

func TestStoreWriteFailureIsSwallowed(t *testing.T) {
	kv := newMemKV()
	kv.writeErr = errors.New("read-only filesystem")
	s := newTestStore(t, kv)

	assert.True(t, s.Toggle(1))
	s.Flush()
	assert.True(t, s.IsFavourite(1))
}

func TestStoreReloadOverwritesMemory(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv)
	s.Toggle(1)
	s.Flush()

	other := NewStore(kv, quietLogger())
	other.Load()
	other.Toggle(2)
	other.Close()

	s.Reload()
	assert.Equal(t, []int{1, 2}, s.IDs())
}

func TestStoreSet(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv)

	s.Set(4, true)
	s.Set(4, true)
	s.Flush()
	assert.Equal(t, 1, kv.writeCount())
	s.Set(4, false)
	assert.False(t, s.IsFavourite(4))
}

func TestStoreCloseFlushes(t *testing.T) {
	kv := newMemKV()
	s := NewStore(kv, quietLogger())
	s.Load()
	s.Toggle(9)
	s.Close()
	assert.Equal(t, "[9]", kv.get(StorageKey))

	// After close, writes still land synchronously.
	s.Toggle(10)
	assert.Equal(t, "[9,10]", kv.get(StorageKey))
	s.Close()
}
