package db

import "sync"

// Memory is an in memory DB. It is used by tests, where "durability" means
// surviving the construction of a new signer over the same store, and by
// embedding hosts that manage persistence themselves.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemory returns an empty in memory DB.
func NewMemory() *Memory {
	return &Memory{entries: map[string][]byte{}}
}

// Get implements the DB interface.
func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.entries[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

// Txn implements the DB interface.
func (m *Memory) Txn() Txn {
	return &memoryTxn{db: m}
}

type memoryTxn struct {
	db     *Memory
	writes []memoryWrite
}

type memoryWrite struct {
	key   string
	value []byte
}

func (txn *memoryTxn) Put(key, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)
	txn.writes = append(txn.writes, memoryWrite{key: string(key), value: cp})
}

func (txn *memoryTxn) Commit() error {
	txn.db.mu.Lock()
	defer txn.db.mu.Unlock()

	for _, write := range txn.writes {
		txn.db.entries[write.key] = write.value
	}
	txn.writes = nil
	return nil
}
