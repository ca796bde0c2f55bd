package go_hash_index

import "unsafe"

const (
	defaultHashPower = 16
	maxHashPower     = 30
)

// slotBytes is what one chain-head slot costs, reported through Stats.
var slotBytes = int64(unsafe.Sizeof((*Item)(nil)))

type table []*Item

type tableAllocFn func(size uint32) (table, error)

func allocTable(size uint32) (table, error) {
	return make(table, size), nil
}

func hashSize(power uint32) uint32 {
	return 1 << power
}

func hashMask(power uint32) uint32 {
	return hashSize(power) - 1
}

// tableState is the pair of chain-head tables the index serves from.
// primary is always live; old is live only while an expansion is still
// migrating buckets out of it.
type tableState struct {
	power   uint32
	primary table

	old       table
	expanding bool
	// frontier is the next old-table bucket to migrate. Every old bucket
	// below it is already drained; every bucket at or above it is untouched
	// since the expansion began.
	frontier uint32
}

// bucketSlot returns the chain-head slot the key of hash hv homes at.
// During an expansion a key whose old-table bucket has not been migrated yet
// still homes in old; everything else homes in primary. Exactly one slot
// holds any indexed key at any time.
func (s *tableState) bucketSlot(hv uint32) **Item {
	if s.expanding {
		if oldBucket := hv & hashMask(s.power-1); oldBucket >= s.frontier {
			return &s.old[oldBucket]
		}
	}
	return &s.primary[hv&hashMask(s.power)]
}

// grow swings primary into old and allocates a doubled primary. On
// allocation failure the current table keeps serving and the index stays
// un-expanded.
func (s *tableState) grow(alloc tableAllocFn) error {
	doubled, err := alloc(hashSize(s.power + 1))
	if err != nil {
		return err
	}

	s.old = s.primary
	s.primary = doubled
	s.power++
	s.expanding = true
	s.frontier = 0
	return nil
}

// migrateBucket rehomes every item chained at the frontier bucket of old
// into primary, consuming the old chain head first, then advances the
// frontier. Returns true once the whole old table has been drained.
func (s *tableState) migrateBucket() bool {
	var next *Item
	for it := s.old[s.frontier]; it != nil; it = next {
		next = it.next
		chainPrepend(&s.primary[it.hv&hashMask(s.power)], it)
	}
	s.old[s.frontier] = nil

	s.frontier++
	if s.frontier == hashSize(s.power-1) {
		s.expanding = false
		s.old = nil
		s.frontier = 0
		return true
	}
	return false
}

// tableBytes is the memory held by the live table arrays.
func (s *tableState) tableBytes() int64 {
	b := int64(len(s.primary)) * slotBytes
	if s.expanding {
		b += int64(len(s.old)) * slotBytes
	}
	return b
}
