package cmap

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func hashInts(k int) uint64 {
	return StringHasher(strconv.Itoa(k))
}

func TestReserveAndSet(t *testing.T) {
	m := New[int, int](DefaultShardCount, hashInts)
	ok, wait := m.Reserve(5)
	assert.True(t, ok)
	assert.Nil(t, wait)
	m.Set(5, 7)
	v, ok := m.Load(5)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestReReserveFailsOnceResolved(t *testing.T) {
	m := New[int, int](DefaultShardCount, hashInts)
	ok, _ := m.Reserve(5)
	assert.True(t, ok)
	m.Set(5, 7)
	ok, wait := m.Reserve(5)
	assert.False(t, ok)
	assert.Nil(t, wait)
}

func TestSecondReserverWaits(t *testing.T) {
	m := New[int, int](DefaultShardCount, hashInts)
	ok, _ := m.Reserve(5)
	assert.True(t, ok)

	ok, wait := m.Reserve(5)
	assert.False(t, ok)
	assert.NotNil(t, wait)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Set(5, 42)
	}()
	<-wait
	wg.Wait()

	v, ok := m.Load(5)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestLenCountsOnlyResolved(t *testing.T) {
	m := New[int, int](DefaultShardCount, hashInts)
	m.Reserve(1)
	assert.Equal(t, 0, m.Len())
	m.Set(1, 1)
	assert.Equal(t, 1, m.Len())
}
