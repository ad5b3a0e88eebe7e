package atoms_test

import (
	"runtime"
	"sync"
	"testing"

	"github.com/reactivestate/atoms"
	"github.com/reactivestate/atoms/flavors"
)

// memoryMetrics mirrors the teacher's MemoryAllocationMetrics, trimmed to the
// fields this kernel's benchmarks actually report.
type memoryMetrics struct {
	Allocs     uint64
	TotalAlloc uint64
}

func getMemoryMetrics() memoryMetrics {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return memoryMetrics{Allocs: m.Mallocs, TotalAlloc: m.TotalAlloc}
}

// buildChain wires a depth-deep chain of Derive atoms, each watching the one
// before it, mirroring the teacher's createTestDependencyChain.
func buildChain(depth int) []*atoms.Atom[int] {
	chain := make([]*atoms.Atom[int], depth)
	chain[0] = atoms.NewAtom(flavors.Value(1))
	for i := 1; i < depth; i++ {
		prev := chain[i-1]
		chain[i] = atoms.NewAtom(flavors.Derive(func(ctx *atoms.ResolveCtx) (int, error) {
			v, err := atoms.Watch(ctx, prev)
			return v + 1, err
		}))
	}
	return chain
}

// BenchmarkReadChain measures allocation cost of reading (and immediately
// releasing, per §8 property 5) the tail of a dependency chain.
func BenchmarkReadChain(b *testing.B) {
	store := atoms.NewStore()
	chain := buildChain(10)
	tail := chain[len(chain)-1]

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := atoms.Read(store, tail); err != nil {
			b.Fatalf("Read: %v", err)
		}
	}
}

// BenchmarkSetPropagation measures allocation cost of a write that
// re-evaluates every downstream link in a subscribed chain.
func BenchmarkSetPropagation(b *testing.B) {
	store := atoms.NewStore()
	chain := buildChain(10)
	head, tail := chain[0], chain[len(chain)-1]

	sub := atoms.NewSubscriber()
	defer sub.Unsubscribe()
	if _, err := atoms.WatchSub(store, tail, sub, func() {}); err != nil {
		b.Fatalf("WatchSub: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := atoms.Set(store, head, i); err != nil {
			b.Fatalf("Set: %v", err)
		}
	}
}

// BenchmarkReleaseCascade measures allocation cost of checkAndRelease walking
// all the way back up a chain when its sole subscriber drops.
func BenchmarkReleaseCascade(b *testing.B) {
	store := atoms.NewStore()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		chain := buildChain(10)
		tail := chain[len(chain)-1]

		sub := atoms.NewSubscriber()
		if _, err := atoms.WatchSub(store, tail, sub, func() {}); err != nil {
			b.Fatalf("WatchSub: %v", err)
		}
		sub.Unsubscribe()
	}
}

// BenchmarkWideDependencyGraph measures allocation cost of N independent
// derived atoms sharing one upstream, mirroring the teacher's
// WideDependencyGraph scenario.
func BenchmarkWideDependencyGraph(b *testing.B) {
	store := atoms.NewStore()
	base := atoms.NewAtom(flavors.Value(1))

	dependents := make([]*atoms.Atom[int], 50)
	for i := range dependents {
		idx := i
		dependents[i] = atoms.NewAtom(flavors.Derive(func(ctx *atoms.ResolveCtx) (int, error) {
			v, err := atoms.Watch(ctx, base)
			return v + idx, err
		}))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		for _, dep := range dependents {
			if _, err := atoms.Read(store, dep); err != nil {
				b.Fatalf("Read: %v", err)
			}
		}
	}
}

// BenchmarkConcurrentStores measures allocation cost of independent stores
// resolving chains concurrently, mirroring the teacher's BenchmarkStressTest.
// Each goroutine owns its own StoreContext: §5's single-kernel-thread model
// means one store is never touched from two goroutines at once.
func BenchmarkConcurrentStores(b *testing.B) {
	const numStores = 50

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		var wg sync.WaitGroup
		for s := 0; s < numStores; s++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				store := atoms.NewStore()
				atom := atoms.NewAtom(flavors.Value(id))
				if _, err := atoms.Read(store, atom); err != nil {
					b.Errorf("Read: %v", err)
				}
			}(s)
		}
		wg.Wait()
	}
}

// BenchmarkMemoryUsageProfile reports total-allocation-per-op across a few
// representative scenarios, mirroring the teacher's table-driven
// BenchmarkMemoryUsageProfile.
func BenchmarkMemoryUsageProfile(b *testing.B) {
	scenarios := []struct {
		name string
		fn   func(store *atoms.StoreContext) error
	}{
		{
			name: "SimpleRead",
			fn: func(store *atoms.StoreContext) error {
				a := atoms.NewAtom(flavors.Value(42))
				_, err := atoms.Read(store, a)
				return err
			},
		},
		{
			name: "DeepChain",
			fn: func(store *atoms.StoreContext) error {
				chain := buildChain(20)
				_, err := atoms.Read(store, chain[len(chain)-1])
				return err
			},
		},
		{
			name: "SnapshotRestore",
			fn: func(store *atoms.StoreContext) error {
				chain := buildChain(5)
				tail := chain[len(chain)-1]
				sub := atoms.NewSubscriber()
				defer sub.Unsubscribe()
				if _, err := atoms.WatchSub(store, tail, sub, func() {}); err != nil {
					return err
				}
				snap := store.Snapshot()
				if err := atoms.Set(store, chain[0], 99); err != nil {
					return err
				}
				store.Restore(snap)
				return nil
			},
		},
	}

	for _, scenario := range scenarios {
		b.Run(scenario.name, func(b *testing.B) {
			b.StopTimer()
			initial := getMemoryMetrics()

			b.StartTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				store := atoms.NewStore()
				if err := scenario.fn(store); err != nil {
					b.Fatalf("scenario failed: %v", err)
				}
			}

			b.StopTimer()
			final := getMemoryMetrics()

			allocDiff := final.TotalAlloc - initial.TotalAlloc
			b.ReportMetric(float64(allocDiff)/float64(b.N), "bytes/op_total")
			b.ReportMetric(float64(final.Allocs-initial.Allocs)/float64(b.N), "allocs/op")
		})
	}
}
