package repository

import (
	"context"
	"math/rand"
	"strconv"
	"testing"
)

func populate(b *testing.B, store *TreapStore, n int) []string {
	b.Helper()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "pl-" + strconv.Itoa(i)
		// health scores cluster, so ties are common
		score := min(100, max(0, int(rng.NormFloat64()*15+60)))
		if err := store.Upsert(ctx, Entry{PlaylistID: ids[i], HealthScore: score}); err != nil {
			b.Fatal(err)
		}
	}
	return ids
}

func BenchmarkTreapStore_Upsert(b *testing.B) {
	store := NewTreapStore()
	ids := populate(b, store, 100_000)
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			id := ids[rng.Intn(len(ids))]
			_ = store.Upsert(ctx, Entry{PlaylistID: id, HealthScore: rng.Intn(101)})
		}
	})
}

func BenchmarkTreapStore_Rank(b *testing.B) {
	store := NewTreapStore()
	ids := populate(b, store, 100_000)
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			if _, err := store.Rank(ctx, ids[rng.Intn(len(ids))]); err != nil {
				b.Error(err)
			}
		}
	})
}

func BenchmarkTreapStore_TopN(b *testing.B) {
	store := NewTreapStore()
	populate(b, store, 100_000)
	ctx := context.Background()

	for _, n := range []int{10, 100} {
		b.Run("n="+strconv.Itoa(n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := store.TopN(ctx, n); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkTreapStore_Mixed approximates service traffic: mostly rank and
// leaderboard reads with a steady stream of new analyses.
func BenchmarkTreapStore_Mixed(b *testing.B) {
	store := NewTreapStore(WithMaxEntries(150_000))
	ids := populate(b, store, 100_000)
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			switch p := rng.Float64(); {
			case p < 0.3:
				_ = store.Upsert(ctx, Entry{PlaylistID: ids[rng.Intn(len(ids))], HealthScore: rng.Intn(101)})
			case p < 0.8:
				_, _ = store.Rank(ctx, ids[rng.Intn(len(ids))])
			default:
				_, _ = store.TopN(ctx, 10)
			}
		}
	})
}
