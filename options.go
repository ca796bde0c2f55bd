package go_hash_index

import "golang.org/x/time/rate"

type Option func(idx *Index)

// WithInitialPower sets the base-2 log of the initial table size. Zero
// keeps the default.
func WithInitialPower(power uint32) Option {
	return func(idx *Index) {
		if power > 0 {
			idx.initialPower = power
		}
	}
}

// WithBulkMoveSize fixes how many old-table buckets one global-lock burst
// migrates, overriding the HASH_BULK_MOVE environment variable.
func WithBulkMoveSize(buckets int) Option {
	return func(idx *Index) {
		if buckets > 0 {
			idx.bulkMove = buckets
		}
	}
}

// WithLockStripePower sets the base-2 log of the bucket-lock stripe count.
func WithLockStripePower(power uint32) Option {
	return func(idx *Index) {
		idx.stripePower = power
	}
}

// WithRebalancer registers the sibling rebalancer to pause while the index
// is held in global-lock mode.
func WithRebalancer(r Rebalancer) Option {
	return func(idx *Index) {
		if r != nil {
			idx.rebalancer = r
		}
	}
}

// WithMigrationRate throttles how often the maintenance worker may take a
// global-lock migration burst.
func WithMigrationRate(limit rate.Limit, burst int) Option {
	return func(idx *Index) {
		idx.limiter = rate.NewLimiter(limit, burst)
	}
}
