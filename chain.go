package go_hash_index

// chainFind walks the chain rooted at slot and returns the first item whose
// key matches, along with the depth walked to reach it.
func chainFind(slot **Item, key []byte) (*Item, int) {
	depth := 0
	for it := *slot; it != nil; it = it.next {
		if it.matches(key) {
			return it, depth
		}
		depth++
	}
	return nil, depth
}

// chainBefore returns the address of the link that references the item with
// the given key: the chain-head slot itself, or some predecessor's next
// field. When the key is absent it returns the terminal nil link.
func chainBefore(slot **Item, key []byte) **Item {
	pos := slot
	for *pos != nil && !(*pos).matches(key) {
		pos = &(*pos).next
	}
	return pos
}

// chainPrepend links it at the head of the chain rooted at slot.
func chainPrepend(slot **Item, it *Item) {
	it.next = *slot
	*slot = it
}
