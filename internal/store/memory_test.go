package store

import (
	"context"
	"sync"
	"testing"
)

func TestRanksKeepsBest(t *testing.T) {
	ctx := context.Background()
	m := NewRanks()
	if up, best, _ := m.Upsert(ctx, "Ada", "A", 100); !up || best != 100 {
		t.Fatalf("insert: updated=%v best=%d", up, best)
	}
	if up, best, _ := m.Upsert(ctx, "Ada", "A", 90); up || best != 100 {
		t.Fatalf("lower: updated=%v best=%d", up, best)
	}
	if up, best, _ := m.Upsert(ctx, "Ada", "A", 100); up || best != 100 {
		t.Fatalf("equal score must not count as an update: updated=%v best=%d", up, best)
	}
	if up, best, _ := m.Upsert(ctx, "Ada", "B", 5); !up || best != 5 {
		t.Fatalf("other mode is a separate key: updated=%v best=%d", up, best)
	}
}

func TestRanksConcurrentUpsertKeepsMax(t *testing.T) {
	ctx := context.Background()
	m := NewRanks()
	var wg sync.WaitGroup
	for i := 1; i <= 200; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			m.Upsert(ctx, "Ada", "MP", score)
		}(i)
	}
	wg.Wait()
	top, _ := m.Top(ctx, 10)
	if len(top) != 1 || top[0].Score != 200 {
		t.Fatalf("top = %+v, want single row with 200", top)
	}
}

func TestRanksTopOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	m := NewRanks()
	m.Upsert(ctx, "a", "MP", 10)
	m.Upsert(ctx, "b", "MP", 30)
	m.Upsert(ctx, "c", "Normal", 20)
	top, _ := m.Top(ctx, 2)
	if len(top) != 2 || top[0].Nickname != "b" || top[1].Nickname != "c" {
		t.Fatalf("top = %+v", top)
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s := NewSettings()
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("empty store returned a value")
	}
	s.Set(ctx, "k", "v")
	if v, ok, _ := s.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("get = %q, %v", v, ok)
	}
}
