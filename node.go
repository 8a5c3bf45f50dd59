package chash

import (
	"bytes"
	"fmt"
	"reflect"
	"unsafe"
)

// Node is a single key/value entry owned by a Table. Nodes are created by
// Table.Add and obtained through Table.Find or the traversal methods.
// A node must not be used after it has been deleted.
type Node[K Key, V any] struct {
	key   K
	value V

	keySize   int
	valueSize int

	next  *Node[K, V]
	prev  *Node[K, V]
	owner *bucket[K, V] // nil once unlinked
}

// Key returns the node's key.
func (n *Node[K, V]) Key() K { return n.key }

// Value returns the node's value.
func (n *Node[K, V]) Value() V { return n.value }

// Linked reports whether the node is still part of a table.
func (n *Node[K, V]) Linked() bool { return n != nil && n.owner != nil }

// Replace substitutes a copy of value for the node's current value. The old
// value's charge is released before the new one is made, so a same-size
// replace succeeds on a full allocator. On failure the node keeps its old
// value. The key and the node's position are unchanged.
func (n *Node[K, V]) Replace(value V) error {
	if n == nil {
		return ErrNilNode
	}
	if n.owner == nil {
		return ErrUnlinked
	}

	alloc := n.owner.table.alloc
	size := sizeOf(value)
	alloc.Free(n.valueSize)
	if err := alloc.Alloc(size); err != nil {
		// Restores the charge released just above.
		alloc.Alloc(n.valueSize)
		return fmt.Errorf("replace value: %w", err)
	}

	n.value = cloneValue(value)
	n.valueSize = size
	return nil
}

func nodeSize[K Key, V any]() int {
	var n Node[K, V]
	return int(unsafe.Sizeof(n))
}

// newNode charges the node, its key and its value in that order. On failure,
// whatever was already charged is released.
func newNode[K Key, V any](alloc Allocator, key K, value V) (*Node[K, V], error) {
	size := nodeSize[K, V]()
	if err := alloc.Alloc(size); err != nil {
		return nil, fmt.Errorf("allocate node: %w", err)
	}

	keySize := sizeOf(key)
	if err := alloc.Alloc(keySize); err != nil {
		alloc.Free(size)
		return nil, fmt.Errorf("allocate key: %w", err)
	}

	valueSize := sizeOf(value)
	if err := alloc.Alloc(valueSize); err != nil {
		alloc.Free(keySize)
		alloc.Free(size)
		return nil, fmt.Errorf("allocate value: %w", err)
	}

	return &Node[K, V]{
		key:       key,
		value:     cloneValue(value),
		keySize:   keySize,
		valueSize: valueSize,
	}, nil
}

// release returns the node's charges and drops its key and value.
func (n *Node[K, V]) release(alloc Allocator) {
	alloc.Free(n.valueSize)
	alloc.Free(n.keySize)
	alloc.Free(nodeSize[K, V]())

	var (
		zk K
		zv V
	)
	n.key, n.value = zk, zv
	n.keySize, n.valueSize = 0, 0
}

// sizeOf is the byte length of strings and byte slices, and the in-memory
// size of anything else.
func sizeOf[T any](v T) int {
	switch x := any(v).(type) {
	case string:
		return len(x)
	case []byte:
		return len(x)
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() {
		switch {
		case rv.Kind() == reflect.String:
			return rv.Len()
		case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
			return rv.Len()
		}
	}
	return int(unsafe.Sizeof(v))
}

// cloneValue deep-copies byte slices, including named byte-slice types, and
// values with a Clone method.
func cloneValue[V any](v V) V {
	switch x := any(v).(type) {
	case []byte:
		if x == nil {
			return v
		}
		return any(bytes.Clone(x)).(V)
	case interface{ Clone() V }:
		return x.Clone()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 && !rv.IsNil() {
		cp := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(cp, rv)
		return cp.Interface().(V)
	}
	return v
}
