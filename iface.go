package go_hash_index

// IIndex is the lookup structure shared by every request-handling worker of
// the cache: one index mapping a byte-string key to the item linked under
// it. Hashing is the caller's policy; every operation takes the precomputed
// hash alongside the key.
type IIndex interface {
	Find(key []byte, hv uint32) *Item
	Insert(it *Item, hv uint32)
	Delete(key []byte, hv uint32)

	StartMaintenance() error
	StopMaintenance()

	// utils

	GetStats() Stats
}

type Stats struct {
	statPower      int32
	statTableBytes int64
	statExpanding  int32
	statGrow       int32
	statNodes      int64
	statHit        int64
	statMiss       int64
	statSet        int64
	statDel        int64
	statDepth      int64
}
