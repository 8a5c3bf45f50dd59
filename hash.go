package chash

import "github.com/cespare/xxhash/v2"

// 2^31 + 2^29 - 2^25 + 2^22 - 2^19 - 2^16 + 1
const goldenRatioPrime32 uint32 = 0x9e370001

const stringSeed uint32 = 131

// HashInt maps an integer key to a bucket index in [0, buckets).
// The product wraps in 32 bits; its high bits carry most of the spread.
func HashInt(key uint32, buckets uint32) uint32 {
	hash := key * goldenRatioPrime32
	return hash % buckets
}

// HashString maps a string key to a bucket index in [0, buckets) using a
// polynomial hash with multiplier 131. Hashing stops at the first NUL byte.
func HashString(key string, buckets uint32) uint32 {
	var hash uint32
	for i := 0; i < len(key); i++ {
		if key[i] == 0 {
			break
		}
		hash = hash*stringSeed + uint32(key[i])
	}
	return hash % buckets
}

// HashDigest maps a string key to a bucket index in [0, buckets) using xxhash64.
func HashDigest(key string, buckets uint32) uint32 {
	return uint32(xxhash.Sum64String(key) % uint64(buckets))
}
