package hub

import (
	"fmt"
	"testing"

	"github.com/mptetris/tetris-server/internal/protocol"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		r.Upsert(fmt.Sprintf("c%d", i), protocol.Session{Score: i})
	}
	r.Upsert("c1", protocol.Session{Score: 99})
	if r.Len() != 3 {
		t.Fatalf("len = %d, want 3", r.Len())
	}
	if s, _ := r.Get("c1"); s.Score != 99 {
		t.Fatalf("upsert did not overwrite: %+v", s)
	}

	snap := r.Snapshot()
	if !r.Remove("c0") || r.Remove("c0") {
		t.Fatalf("remove should report presence once")
	}
	if len(snap) != 3 {
		t.Fatalf("snapshot changed after remove: %d entries", len(snap))
	}
	if _, ok := r.Snapshot()["c0"]; ok {
		t.Fatalf("removed id still in snapshot")
	}
}
