package util

import "sync"

type (
	// KeyedMutex hands out one mutex per key. Entries are released once no
	// goroutine holds or waits on them
	KeyedMutex[K comparable] struct {
		locks map[K]*keyedLock
		mu    sync.Mutex
	}

	keyedLock struct {
		mu   sync.Mutex
		refs int
	}
)

// NewKeyedMutex creates an empty KeyedMutex
func NewKeyedMutex[K comparable]() *KeyedMutex[K] {
	return &KeyedMutex[K]{locks: map[K]*keyedLock{}}
}

// Lock acquires the mutex for key and returns its release function
func (m *KeyedMutex[K]) Lock(key K) func() {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyedLock{}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}

func (m *KeyedMutex[K]) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
