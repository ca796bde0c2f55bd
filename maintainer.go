package go_hash_index

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

const bulkMoveEnv = "HASH_BULK_MOVE"

var defaultBulkMove = 1

// Rebalancer is the sibling slab rebalancer the maintenance worker pauses
// for the whole time the index is held in global-lock mode.
type Rebalancer interface {
	Pause()
	Resume()
}

type noopRebalancer struct{}

func (noopRebalancer) Pause()  {}
func (noopRebalancer) Resume() {}

// maintainer is the single long-lived worker that performs expansions. It
// sleeps on a condition until an insert crosses the load threshold, then
// migrates old-table buckets in bounded batches under the global lock,
// releasing it between batches so readers and writers can progress.
type maintainer struct {
	idx *Index

	mu        sync.Mutex
	cond      *sync.Cond
	requested bool
	running   bool
	started   bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newMaintainer(idx *Index) *maintainer {
	m := &maintainer{idx: idx}
	m.cond = sync.NewCond(&m.mu)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// requestExpand is the idempotent threshold-crossed signal: any number of
// crossings before one wake produces exactly one unit of expansion work.
func (m *maintainer) requestExpand() {
	m.mu.Lock()
	if !m.requested {
		m.requested = true
		m.cond.Signal()
	}
	m.mu.Unlock()
}

func (m *maintainer) alive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *maintainer) run() {
	defer m.wg.Done()
	idx := m.idx

	for m.alive() {
		// one bounded burst of migration work under the global lock
		release := idx.locker.lockGlobal()
		for moved := 0; moved < idx.bulkMove && idx.state.expanding; moved++ {
			if idx.state.migrateBucket() {
				idx.finishExpand()
			}
		}
		expanding := idx.state.expanding
		release()

		if expanding {
			if idx.limiter != nil {
				// paces the global-lock bursts; canceled at shutdown
				_ = idx.limiter.Wait(m.ctx)
			}
			continue
		}

		// back to fine-grained locking until the next threshold crossing
		idx.locker.setMode(lockModeGranular)
		idx.rebalancer.Resume()

		// a request raised before the worker got here is kept, not lost;
		// the flag is consumed only once the worker takes it up
		m.mu.Lock()
		for !m.requested && m.running {
			m.cond.Wait()
		}
		if !m.running {
			m.mu.Unlock()
			return
		}
		m.requested = false
		m.mu.Unlock()

		idx.rebalancer.Pause()
		idx.locker.setMode(lockModeGlobal)

		release = idx.locker.lockGlobal()
		idx.startExpand()
		release()
	}
}

// StartMaintenance spawns the maintenance worker. The migration batch size
// comes from the option when one was given, otherwise from the
// HASH_BULK_MOVE environment variable.
func (idx *Index) StartMaintenance() error {
	m := idx.maint
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("maintenance worker is already running")
	}

	if idx.bulkMove <= 0 {
		idx.bulkMove = bulkMoveFromEnv()
	}

	m.started = true
	m.running = true
	m.wg.Add(1)
	go m.run()
	return nil
}

// StopMaintenance signals shutdown and joins the worker. A worker that is
// mid-expansion finishes its current batch, observes the flag on the next
// wakeup and exits.
func (idx *Index) StopMaintenance() {
	m := idx.maint
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.cond.Signal()
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

func bulkMoveFromEnv() int {
	raw := os.Getenv(bulkMoveEnv)
	if raw == "" {
		return defaultBulkMove
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		zap.L().Warn("ignoring invalid bulk move size",
			zap.String("env", bulkMoveEnv),
			zap.String("value", raw))
		return defaultBulkMove
	}
	return n
}
