package parallel

import (
	"sync/atomic"
	"testing"
)

func TestRunExecutesAll(t *testing.T) {
	p := New(4)
	defer p.Close()

	var n atomic.Int64
	tasks := make([]func(), 100)
	for i := range tasks {
		tasks[i] = func() { n.Add(1) }
	}
	p.Run(tasks)
	if got := n.Load(); got != 100 {
		t.Errorf("ran %d tasks, want 100", got)
	}
}

func TestRunAfterClose(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close() // idempotent

	var n atomic.Int64
	p.Run([]func(){func() { n.Add(1) }})
	if n.Load() != 0 {
		t.Error("closed pool executed work")
	}
}

func TestRowsCoversEachRowOnce(t *testing.T) {
	p := New(3)
	defer p.Close()

	const height = 57
	var hits [height]atomic.Int32
	Rows(p, height, func(row int) { hits[row].Add(1) })
	for y := 0; y < height; y++ {
		if got := hits[y].Load(); got != 1 {
			t.Errorf("row %d visited %d times", y, got)
		}
	}
}

func TestRowsNilPool(t *testing.T) {
	var prev int = -1
	Rows(nil, 10, func(row int) {
		if row != prev+1 {
			t.Errorf("row %d after %d, want sequential order", row, prev)
		}
		prev = row
	})
	if prev != 9 {
		t.Errorf("last row = %d, want 9", prev)
	}
}

func TestWorkersDefault(t *testing.T) {
	p := New(0)
	defer p.Close()
	if p.Workers() < 1 {
		t.Errorf("Workers() = %d, want at least 1", p.Workers())
	}
}
