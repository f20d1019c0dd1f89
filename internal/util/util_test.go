package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := SetOf("a", "b")

	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
	assert.True(t, s.Add("c"))
	assert.False(t, s.Add("a"))
	assert.Len(t, s, 3)
}

func TestKeyedMutexSerializesKey(t *testing.T) {
	m := NewKeyedMutex[string]()
	var wg sync.WaitGroup
	counter := 0

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("dag")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, m.size())
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	m := NewKeyedMutex[string]()

	unlockA := m.Lock("a")
	unlockB := m.Lock("b")
	assert.Equal(t, 2, m.size())

	unlockA()
	unlockB()
	assert.Equal(t, 0, m.size())
}
