package chash

import (
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

// KeyKind selects how a table hashes and compares its keys.
type KeyKind int

const (
	// IntegerKey hashes the low 32 bits of an integer key multiplicatively.
	IntegerKey KeyKind = iota
	// StringKey hashes a string key with a base-131 polynomial.
	StringKey
	// DigestKey hashes a string key with xxhash64.
	DigestKey
)

func (k KeyKind) String() string {
	switch k {
	case IntegerKey:
		return "integer"
	case StringKey:
		return "string"
	case DigestKey:
		return "digest"
	default:
		return fmt.Sprintf("KeyKind(%d)", int(k))
	}
}

// Key is the set of key types a Table accepts. Integer types go with
// IntegerKey; string types go with StringKey or DigestKey.
type Key interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~string
}

type bucket[K Key, V any] struct {
	table *Table[K, V]
	first *Node[K, V]
}

func (b *bucket[K, V]) pushFront(n *Node[K, V]) {
	n.prev = nil
	n.next = b.first
	if b.first != nil {
		b.first.prev = n
	}
	b.first = n
	n.owner = b
}

func (b *bucket[K, V]) remove(n *Node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		b.first = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	n.next, n.prev, n.owner = nil, nil, nil
}

// Table is a hash table with a fixed number of buckets and separate chaining.
// Keys are not unique: adding a key twice stores two nodes, the newer one
// first in its bucket. A Table is not safe for concurrent use.
type Table[K Key, V any] struct {
	buckets []bucket[K, V]
	kind    KeyKind
	count   int
	alloc   Allocator
}

// Option configures a Table.
type Option func(*options)

type options struct {
	alloc Allocator
}

// WithAllocator makes the table charge its memory to a.
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.alloc = a
		}
	}
}

// New creates a table with the given number of buckets. The bucket count
// never changes afterwards.
func New[K Key, V any](buckets int, kind KeyKind, opts ...Option) (*Table[K, V], error) {
	if buckets <= 0 || uint64(buckets) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrBucketCount, buckets)
	}
	if err := checkKind[K](kind); err != nil {
		return nil, err
	}

	o := options{alloc: heapAllocator{}}
	for _, opt := range opts {
		opt(&o)
	}

	tableSize, arraySize := headerSizes[K, V](buckets)
	if err := o.alloc.Alloc(tableSize); err != nil {
		return nil, fmt.Errorf("allocate table: %w", err)
	}
	if err := o.alloc.Alloc(arraySize); err != nil {
		o.alloc.Free(tableSize)
		return nil, fmt.Errorf("allocate %d buckets: %w", buckets, err)
	}

	t := &Table[K, V]{
		buckets: make([]bucket[K, V], buckets),
		kind:    kind,
		alloc:   o.alloc,
	}
	for i := range t.buckets {
		t.buckets[i].table = t
	}
	return t, nil
}

func checkKind[K Key](kind KeyKind) error {
	var zero K
	isString := reflect.TypeOf(zero).Kind() == reflect.String

	switch kind {
	case IntegerKey:
		if isString {
			return fmt.Errorf("%w: %s kind with %T keys", ErrKeyKind, kind, zero)
		}
	case StringKey, DigestKey:
		if !isString {
			return fmt.Errorf("%w: %s kind with %T keys", ErrKeyKind, kind, zero)
		}
	default:
		return fmt.Errorf("%w: unknown %s", ErrKeyKind, kind)
	}
	return nil
}

func headerSizes[K Key, V any](buckets int) (table, array int) {
	var (
		t Table[K, V]
		b bucket[K, V]
	)
	return int(unsafe.Sizeof(t)), buckets * int(unsafe.Sizeof(b))
}

func (t *Table[K, V]) valid() bool {
	return t != nil && t.buckets != nil
}

// Kind returns the table's key kind.
func (t *Table[K, V]) Kind() KeyKind { return t.kind }

// BucketCount returns the fixed number of buckets, or 0 for an invalid table.
func (t *Table[K, V]) BucketCount() int {
	if !t.valid() {
		return 0
	}
	return len(t.buckets)
}

// Len returns the number of live nodes.
func (t *Table[K, V]) Len() int {
	if !t.valid() {
		return 0
	}
	return t.count
}

// BucketOf returns the index of the bucket key hashes to, or -1 for an
// invalid table.
func (t *Table[K, V]) BucketOf(key K) int {
	if !t.valid() {
		return -1
	}
	return t.index(key)
}

func (t *Table[K, V]) index(key K) int {
	n := uint32(len(t.buckets))
	switch t.kind {
	case IntegerKey:
		return int(HashInt(intBits(key), n))
	case StringKey:
		return int(HashString(stringOf(key), n))
	default:
		return int(HashDigest(stringOf(key), n))
	}
}

// Add stores a copy of key and value as a new node at the head of the key's
// bucket. An existing node with an equal key is left in place.
func (t *Table[K, V]) Add(key K, value V) error {
	if !t.valid() {
		return ErrInvalidTable
	}

	n, err := newNode(t.alloc, key, value)
	if err != nil {
		return err
	}
	t.buckets[t.index(key)].pushFront(n)
	t.count++
	return nil
}

// Find writes up to len(out) nodes whose key equals key into out, newest
// first, and returns the total number of matches. A result larger than
// len(out) means out was truncated.
func (t *Table[K, V]) Find(key K, out []*Node[K, V]) int {
	if !t.valid() {
		return 0
	}

	found := 0
	for n := t.buckets[t.index(key)].first; n != nil; n = n.next {
		if n.key == key {
			if found < len(out) {
				out[found] = n
			}
			found++
		}
	}
	return found
}

// FindAll returns every node whose key equals key, newest first.
func (t *Table[K, V]) FindAll(key K) []*Node[K, V] {
	if !t.valid() {
		return nil
	}

	var nodes []*Node[K, V]
	for n := t.buckets[t.index(key)].first; n != nil; n = n.next {
		if n.key == key {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Del unlinks n and releases it. Deleting a node twice returns ErrUnlinked
// and leaves the table untouched.
func (t *Table[K, V]) Del(n *Node[K, V]) error {
	if n == nil {
		return ErrNilNode
	}
	if !t.valid() {
		return ErrInvalidTable
	}
	if n.owner == nil {
		return ErrUnlinked
	}
	if n.owner.table != t {
		return ErrForeignNode
	}

	n.owner.remove(n)
	n.release(t.alloc)
	t.count--
	return nil
}

// ForEachInBucket calls fn for each node in bucket i, newest first, until fn
// returns false. fn may delete the node it is given. An index outside
// [0, BucketCount()) visits nothing.
func (t *Table[K, V]) ForEachInBucket(i int, fn func(*Node[K, V]) bool) {
	if !t.valid() || i < 0 || i >= len(t.buckets) {
		return
	}

	for n := t.buckets[i].first; n != nil; {
		next := n.next
		if !fn(n) {
			return
		}
		n = next
	}
}

// ForEach calls fn for every node, bucket by bucket, until fn returns false.
// fn may delete the node it is given.
func (t *Table[K, V]) ForEach(fn func(*Node[K, V]) bool) {
	if !t.valid() {
		return
	}

	for i := range t.buckets {
		for n := t.buckets[i].first; n != nil; {
			next := n.next
			if !fn(n) {
				return
			}
			n = next
		}
	}
}

// Destroy deletes every node and releases the bucket array and the table.
// The table is invalid afterwards. Destroy on a nil table is a no-op.
func (t *Table[K, V]) Destroy() {
	if !t.valid() {
		return
	}

	for i := range t.buckets {
		b := &t.buckets[i]
		for n := b.first; n != nil; {
			next := n.next
			b.remove(n)
			n.release(t.alloc)
			t.count--
			n = next
		}
	}

	tableSize, arraySize := headerSizes[K, V](len(t.buckets))
	t.alloc.Free(arraySize)
	t.alloc.Free(tableSize)
	t.buckets = nil
}

func intBits[K Key](key K) uint32 {
	switch k := any(key).(type) {
	case int:
		return uint32(k)
	case int32:
		return uint32(k)
	case int64:
		return uint32(k)
	case uint32:
		return k
	case uint64:
		return uint32(k)
	case uint:
		return uint32(k)
	}

	rv := reflect.ValueOf(key)
	if rv.CanInt() {
		return uint32(rv.Int())
	}
	return uint32(rv.Uint())
}

func stringOf[K Key](key K) string {
	if s, ok := any(key).(string); ok {
		return s
	}
	return reflect.ValueOf(key).String()
}
