package generator

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentCell(t *testing.T) {
	var c DocumentCell
	doc, v := c.Load()
	assert.True(t, doc.Empty())
	assert.Zero(t, v)

	stored := c.Store(Document{HTML: "a"})
	assert.Equal(t, uint64(1), stored.Version)

	_, ok := c.CompareAndSwap(0, Document{HTML: "stale"})
	assert.False(t, ok)
	doc, v = c.Load()
	assert.Equal(t, "a", doc.HTML)
	assert.Equal(t, uint64(1), v)

	stored, ok = c.CompareAndSwap(1, Document{HTML: "b"})
	require.True(t, ok)
	assert.Equal(t, uint64(2), stored.Version)
}

func TestDocumentCellConcurrentCAS(t *testing.T) {
	var c DocumentCell
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := c.CompareAndSwap(0, Document{HTML: "x"}); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
