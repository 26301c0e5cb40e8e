package graph

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlankNodeMapperRemapsIssuedIDs(t *testing.T) {
	m := NewBlankNodeMapper("autos")

	id := m.NextID()
	require.Equal(t, "autos1", id)

	assert.Equal(t, "remapped1", m.CheckID("autos1"))
	assert.Equal(t, "remapped1", m.CheckID("autos1"), "remap is stable")
}

func TestBlankNodeMapperUserIDs(t *testing.T) {
	m := NewBlankNodeMapper("b")

	assert.Equal(t, "b2", m.CheckID("b2"))
	assert.Equal(t, "b2", m.CheckID("b2"))
	assert.True(t, m.Known("b2"))

	assert.Equal(t, "b1", m.NextID())
	assert.Equal(t, "b3", m.NextID(), "NextID skips the user-assigned b2")
}

func TestBlankNodeMapperNextIDDistinct(t *testing.T) {
	m := NewBlankNodeMapper("n")
	seen := make(map[string]struct{})
	for range 100 {
		id := m.NextID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestBlankNodeMapperRemapSkipsTakenIDs(t *testing.T) {
	m := NewBlankNodeMapper("x")
	m.CheckID("remapped1")
	issued := m.NextID()

	assert.Equal(t, "remapped2", m.CheckID(issued))
}

func TestBlankNodeMapperDefaultPrefixSharesCounter(t *testing.T) {
	a := NewBlankNodeMapper("")
	b := NewBlankNodeMapper("")
	assert.Equal(t, DefaultBlankNodePrefix, a.Prefix())

	var mu sync.Mutex
	seen := make(map[string]struct{})
	var wg sync.WaitGroup
	for _, m := range []*BlankNodeMapper{a, b, a, b} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				id := m.NextID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}

func TestBlankNodeMapperWithCounter(t *testing.T) {
	var c IDCounter
	a := NewBlankNodeMapperWithCounter("p", &c)
	b := NewBlankNodeMapperWithCounter("p", &c)

	assert.Equal(t, "p1", a.NextID())
	assert.Equal(t, "p2", b.NextID())
}
