package object

import (
	"strings"

	"github.com/iancoleman/orderedmap"
)

// --- Map Object ---

// Map is an object value: string keys in insertion order. Maps are shared
// by reference. Assigning to an existing key keeps its position.
type Map struct {
	pairs *orderedmap.OrderedMap
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{pairs: orderedmap.New()}
}

func (m *Map) Type() ObjectType { return MAP_OBJ }
func (m *Map) Inspect() string {
	var sb strings.Builder
	inspect(&sb, m, map[Object]bool{})
	return sb.String()
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Object, bool) {
	v, ok := m.pairs.Get(key)
	if !ok {
		return nil, false
	}
	return v.(Object), true
}

// Set stores val under key.
func (m *Map) Set(key string, val Object) {
	m.pairs.Set(key, val)
}

// Delete removes key. It reports whether the key was present.
func (m *Map) Delete(key string) bool {
	if _, ok := m.pairs.Get(key); !ok {
		return false
	}
	m.pairs.Delete(key)
	return true
}

// Keys returns the keys in insertion order. The slice is a copy.
func (m *Map) Keys() []string {
	keys := m.pairs.Keys()
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.pairs.Keys()) }

// Values returns the values in key order.
func (m *Map) Values() []Object {
	keys := m.pairs.Keys()
	out := make([]Object, len(keys))
	for i, k := range keys {
		v, _ := m.pairs.Get(k)
		out[i] = v.(Object)
	}
	return out
}
