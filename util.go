package go_hash_index

import "github.com/twmb/murmur3"

// KeyHash is the hash callers feed the index when they have no hashing
// policy of their own.
func KeyHash(key []byte) uint32 {
	return murmur3.Sum32(key)
}
