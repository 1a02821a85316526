package game

import (
	"reflect"
	"testing"
)

func settledRow(kind Kind, weights ...int) []Cell {
	row := make([]Cell, len(weights))
	for i, w := range weights {
		if w == 0 {
			continue
		}
		row[i] = Cell{Kind: kind, Weight: w, Settled: true}
	}
	return row
}

func TestSweepClearsFullRowAtThreshold(t *testing.T) {
	g := NewGrid(4, 3)
	g[3] = settledRow(KindO, 9, 9, 9)
	g[2] = settledRow(KindT, 1, 0, 0)

	out, res := Sweep(g, 27)
	if out.Height() != 4 {
		t.Fatalf("height = %d, want 4", out.Height())
	}
	if res.RowsCleared != 1 || res.ScoreDelta != 27 {
		t.Fatalf("result = %+v, want 1 row / 27 points", res)
	}
	if !reflect.DeepEqual(res.Cleared, []int{3}) {
		t.Fatalf("cleared = %v, want [3]", res.Cleared)
	}
	for _, c := range out[0] {
		if !c.Empty() {
			t.Fatalf("top row not empty after sweep: %+v", out[0])
		}
	}
	if out[3][0].Weight != 1 || !out[3][0].Settled {
		t.Fatalf("partial row did not move down: %+v", out[3])
	}
	if g[3][0].Weight != 9 {
		t.Fatalf("input grid was modified")
	}
}

func TestSweepKeepsFullRowBelowThreshold(t *testing.T) {
	g := NewGrid(4, 3)
	g[3] = settledRow(KindO, 1, 2, 3)

	out, res := Sweep(g, 60)
	if res.RowsCleared != 0 || res.ScoreDelta != 0 {
		t.Fatalf("result = %+v, want nothing cleared", res)
	}
	if !reflect.DeepEqual(out, g) {
		t.Fatalf("grid changed: %+v", out)
	}
	if got := WarningRows(out, 60); !reflect.DeepEqual(got, []int{3}) {
		t.Fatalf("warning rows = %v, want [3]", got)
	}
}

func TestSweepMultipleRows(t *testing.T) {
	g := NewGrid(5, 2)
	g[4] = settledRow(KindI, 9, 9)
	g[3] = settledRow(KindI, 1, 1) // full but under threshold
	g[2] = settledRow(KindJ, 8, 8)
	g[1] = settledRow(KindL, 5, 0)

	out, res := Sweep(g, 10)
	if res.RowsCleared != 2 || res.ScoreDelta != 34 {
		t.Fatalf("result = %+v, want 2 rows / 34 points", res)
	}
	if !reflect.DeepEqual(res.Cleared, []int{4, 2}) {
		t.Fatalf("cleared = %v, want bottom-up [4 2]", res.Cleared)
	}
	if out.Height() != 5 {
		t.Fatalf("height = %d, want 5", out.Height())
	}
	if !reflect.DeepEqual(out[4], g[3]) || !reflect.DeepEqual(out[3], g[1]) {
		t.Fatalf("rows not compacted: %+v", out)
	}
	for y := 0; y < 3; y++ {
		for _, c := range out[y] {
			if !c.Empty() {
				t.Fatalf("row %d not empty: %+v", y, out[y])
			}
		}
	}
}

func TestRemoveRedlineNoop(t *testing.T) {
	g := NewGrid(4, 3)
	g[3] = settledRow(KindO, 1, 0, 1)

	out, row, removed := RemoveRedline(g, 60)
	if removed || row != -1 {
		t.Fatalf("removed=%v row=%d, want nothing", removed, row)
	}
	if !reflect.DeepEqual(out, g) {
		t.Fatalf("grid changed")
	}
}

func TestRemoveRedlineSkipsUnsettledAndHighRows(t *testing.T) {
	g := NewGrid(5, 3)
	g[4] = settledRow(KindO, 1, 1, 1)
	g[4][1].Settled = false // falling piece overlaps the bottom row
	g[3] = settledRow(KindS, 9, 9, 9)
	g[2] = settledRow(KindT, 2, 2, 2)
	g[1] = settledRow(KindZ, 1, 1, 1)

	out, row, removed := RemoveRedline(g, 20)
	if !removed || row != 2 {
		t.Fatalf("removed=%v row=%d, want row 2", removed, row)
	}
	if out.Height() != 5 {
		t.Fatalf("height = %d, want 5", out.Height())
	}
	if !reflect.DeepEqual(out[2], g[1]) || !reflect.DeepEqual(out[3], g[3]) || !reflect.DeepEqual(out[4], g[4]) {
		t.Fatalf("unexpected compaction: %+v", out)
	}

	// only one row per call
	_, row, removed = RemoveRedline(out, 20)
	if !removed || row != 2 {
		t.Fatalf("second call removed=%v row=%d, want row 2", removed, row)
	}
}

func TestMergeMarksSettled(t *testing.T) {
	g := NewGrid(4, 4)
	out := Merge(g, NewPiece(KindO), Placement{X: 1, Y: 2})
	want := [][]int{{2, 8}, {7, 3}}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			c := out[2+y][1+x]
			if c.Kind != KindO || c.Weight != want[y][x] || !c.Settled {
				t.Fatalf("cell (%d,%d) = %+v", 1+x, 2+y, c)
			}
		}
	}
	if !g[2][1].Empty() {
		t.Fatalf("input grid was modified")
	}
}
