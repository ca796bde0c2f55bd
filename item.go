package go_hash_index

import "bytes"

// Item is one cache record threaded onto a bucket chain. The record is
// allocated and freed by its owner; the index only writes the two fields it
// reserves here: the chain link and the hash the item was inserted under.
type Item struct {
	next *Item
	hv   uint32

	key   []byte
	Value []byte
}

func NewItem(key, value []byte) *Item {
	return &Item{
		key:   key,
		Value: value,
	}
}

// Key returns the key bytes the item is indexed under. The index never
// copies them.
func (it *Item) Key() []byte {
	return it.key
}

func (it *Item) matches(key []byte) bool {
	return bytes.Equal(it.key, key)
}
