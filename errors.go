package chash

import "errors"

var (
	// ErrAllocation is returned when the table's Allocator refuses a charge.
	ErrAllocation = errors.New("chash: allocation failed")

	// ErrInvalidTable is returned by operations on a nil or destroyed table.
	ErrInvalidTable = errors.New("chash: invalid table")

	// ErrUnlinked is returned when deleting or replacing a node that is no
	// longer part of any table.
	ErrUnlinked = errors.New("chash: node is not linked")

	// ErrNilNode is returned when a nil node is passed to Del or Replace.
	ErrNilNode = errors.New("chash: nil node")

	// ErrForeignNode is returned by Del for a node owned by another table.
	ErrForeignNode = errors.New("chash: node belongs to another table")

	// ErrBucketCount is returned by New for a bucket count outside
	// [1, math.MaxUint32].
	ErrBucketCount = errors.New("chash: bucket count out of range")

	// ErrKeyKind is returned by New for an unknown key kind or one that does
	// not fit the key type.
	ErrKeyKind = errors.New("chash: key kind does not match key type")
)
