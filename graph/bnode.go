package graph

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// DefaultBlankNodePrefix is the prefix of IDs issued by mappers created
// without an explicit prefix.
const DefaultBlankNodePrefix = "autos"

const remapPrefix = "remapped"

// IDCounter issues increasing sequence numbers. It is safe for concurrent use.
type IDCounter struct {
	n atomic.Uint64
}

// Next returns the next number, starting at 1.
func (c *IDCounter) Next() uint64 { return c.n.Add(1) }

// sharedCounter backs every mapper using DefaultBlankNodePrefix, so IDs stay
// unique across graphs within the process.
var sharedCounter IDCounter

// BlankNodeMapper issues blank node IDs for one graph and keeps them apart
// from IDs supplied by users.
//
// An ID the mapper issued itself that later arrives from outside (for example
// from a parsed document) is remapped to a fresh ID, so it cannot collide with
// the node the mapper created.
type BlankNodeMapper struct {
	mu      sync.Mutex
	prefix  string
	counter *IDCounter
	remaps  uint64
	// ids maps every known ID to whether the mapper assigned it.
	ids   map[string]bool
	remap map[string]string
}

// NewBlankNodeMapper returns a mapper issuing IDs with the given prefix. An
// empty prefix selects DefaultBlankNodePrefix and the process-wide counter;
// any other prefix gets a private counter.
func NewBlankNodeMapper(prefix string) *BlankNodeMapper {
	if prefix == "" {
		return NewBlankNodeMapperWithCounter(DefaultBlankNodePrefix, &sharedCounter)
	}
	return NewBlankNodeMapperWithCounter(prefix, new(IDCounter))
}

// NewBlankNodeMapperWithCounter returns a mapper drawing numbers from counter,
// which may be shared with other mappers.
func NewBlankNodeMapperWithCounter(prefix string, counter *IDCounter) *BlankNodeMapper {
	if prefix == "" {
		prefix = DefaultBlankNodePrefix
	}
	if counter == nil {
		counter = new(IDCounter)
	}
	return &BlankNodeMapper{
		prefix:  prefix,
		counter: counter,
		ids:     make(map[string]bool),
		remap:   make(map[string]string),
	}
}

// Prefix returns the prefix of issued IDs.
func (m *BlankNodeMapper) Prefix() string { return m.prefix }

// NextID issues an ID not known to the mapper.
func (m *BlankNodeMapper) NextID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		id := m.prefix + strconv.FormatUint(m.counter.Next(), 10)
		if _, taken := m.ids[id]; !taken {
			m.ids[id] = true
			return id
		}
	}
}

// CheckID returns the ID to use for a user-supplied id. Unseen IDs are
// registered as user-assigned and returned unchanged. An ID the mapper issued
// is remapped once and the same replacement is returned from then on.
func (m *BlankNodeMapper) CheckID(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mapped, ok := m.remap[id]; ok {
		return mapped
	}
	auto, known := m.ids[id]
	if !known {
		m.ids[id] = false
		return id
	}
	if !auto {
		return id
	}
	for {
		m.remaps++
		mapped := remapPrefix + strconv.FormatUint(m.remaps, 10)
		if _, taken := m.ids[mapped]; taken {
			continue
		}
		m.ids[mapped] = true
		m.remap[id] = mapped
		return mapped
	}
}

// Known reports whether id has been issued or registered.
func (m *BlankNodeMapper) Known(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[id]
	return ok
}
