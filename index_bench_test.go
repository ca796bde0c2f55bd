package go_hash_index

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/dgraph-io/ristretto/v2"
)

const (
	benchValueSize = 1 << 8
	benchMaxCost   = 2 << 20
)

var benchRand = rand.New(rand.NewSource(42))

func benchKey(i int) []byte {
	key := make([]byte, 8)
	binary.LittleEndian.PutUint64(key, uint64(i))
	return key
}

func randomBytes(sz int) []byte {
	buf := make([]byte, sz)
	benchRand.Read(buf)
	return buf
}

func Benchmark_Index_Insert(b *testing.B) {
	b.StopTimer()
	idx := NewIndex(WithInitialPower(10))
	if err := idx.StartMaintenance(); err != nil {
		panic(err)
	}
	defer idx.StopMaintenance()
	value := randomBytes(benchValueSize)

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		key := benchKey(i)
		idx.Insert(NewItem(key, value), KeyHash(key))
	}
	b.ReportAllocs()
}

func Benchmark_Index_Insert_Find(b *testing.B) {
	b.StopTimer()
	idx := NewIndex(WithInitialPower(10))
	if err := idx.StartMaintenance(); err != nil {
		panic(err)
	}
	defer idx.StopMaintenance()
	value := randomBytes(benchValueSize)

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		key := benchKey(i)
		hv := KeyHash(key)
		idx.Insert(NewItem(key, value), hv)
		_ = idx.Find(key, hv)
	}
	b.ReportAllocs()
}

func Benchmark_Index_Find(b *testing.B) {
	b.StopTimer()
	idx := NewIndex(WithInitialPower(10))
	if err := idx.StartMaintenance(); err != nil {
		panic(err)
	}
	defer idx.StopMaintenance()
	value := randomBytes(benchValueSize)
	for i := 0; i < b.N; i++ {
		key := benchKey(i)
		idx.Insert(NewItem(key, value), KeyHash(key))
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		key := benchKey(i)
		_ = idx.Find(key, KeyHash(key))
	}
	b.ReportAllocs()
}

// Ristretto V2 baseline

func Benchmark_Ristretto_Cache_Add_Read(b *testing.B) {
	b.StopTimer()
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, []byte]{
		NumCounters: 40_000, // 5x estimated nodes
		MaxCost:     benchMaxCost,
		BufferItems: 64,
	})
	defer cache.Close()
	if err != nil {
		panic(err)
	}
	value := randomBytes(benchValueSize)

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		_ = cache.Set(uint64(i), value, benchValueSize)
		_, _ = cache.Get(uint64(i))
	}
	b.ReportAllocs()
}

func Benchmark_Ristretto_Cache_Add(b *testing.B) {
	b.StopTimer()
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, []byte]{
		NumCounters: 40_000, // 5x estimated nodes
		MaxCost:     benchMaxCost,
		BufferItems: 64,
	})
	defer cache.Close()
	if err != nil {
		panic(err)
	}
	value := randomBytes(benchValueSize)

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		_ = cache.Set(uint64(i), value, benchValueSize)
	}
	b.ReportAllocs()
}
