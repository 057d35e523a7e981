package concurrent

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapBasicOperations(t *testing.T) {
	m := NewMap[string, int](HashString)

	m.Set("a", 1)
	m.Set("b", 2)

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = m.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, m.Count())

	m.Remove("a")
	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Count())

	m.Clear()
	assert.Equal(t, 0, m.Count())
}

func TestMapConcurrentAccess(t *testing.T) {
	m := NewMap[string, int](HashString)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Go(func() {
			key := fmt.Sprintf("key-%d", i)
			m.Set(key, i)
			v, ok := m.Get(key)
			assert.True(t, ok)
			assert.Equal(t, i, v)
		})
	}
	wg.Wait()

	assert.Equal(t, 100, m.Count())
}

func TestMapIterCb(t *testing.T) {
	m := NewMap[string, int](HashString)
	for i := 0; i < 10; i++ {
		m.Set(fmt.Sprintf("key-%d", i), i)
	}

	visited := 0
	m.IterCb(func(_ string, _ int) bool {
		visited++
		return true
	})
	assert.Equal(t, 10, visited)

	// 回调返回 false 时提前停止
	visited = 0
	m.IterCb(func(_ string, _ int) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}
