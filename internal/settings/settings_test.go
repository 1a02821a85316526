package settings

import (
	"context"
	"testing"

	"github.com/mptetris/tetris-server/assets"
	"github.com/mptetris/tetris-server/internal/storage"
)

func TestThresholdRoundTripsThroughSQLite(t *testing.T) {
	db, err := storage.Open(storage.Memory)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := storage.Migrate(db, assets.Migrations(), map[string]string{"LEGACY_MODE": "MP"}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	s := New(NewSQLStore(db))

	n, err := s.Threshold(ctx, 60)
	if err != nil || n != 60 {
		t.Fatalf("fresh threshold = %d, %v; want fallback 60", n, err)
	}
	if err := s.SetThreshold(ctx, 45); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetThreshold(ctx, 50); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if n, err := s.Threshold(ctx, 60); err != nil || n != 50 {
		t.Fatalf("threshold = %d, %v; want 50", n, err)
	}
	if err := s.SetThreshold(ctx, 0); err == nil {
		t.Fatalf("zero threshold must be rejected")
	}
}
