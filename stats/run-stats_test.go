package stats

import (
	"errors"
	"sync"
	"testing"

	"github.com/relloyd/psvexport/logger"
)

func TestRunStats(t *testing.T) {
	log := logger.NewLogger("px-test", "error", true)
	r := NewRunStats(log)
	r.AddDataset("orders", "OrdersTbl")
	r.AddDataset("users", "UsersTbl")
	r.AddDataset("empty", "EmptyTbl")

	// Test 1 - datasets keep the order they were added in.
	got := r.GetStats()
	if len(got) != 3 || got[0].Dataset != "orders" || got[2].Dataset != "empty" {
		t.Fatalf("unexpected stats order: %v", got)
	}

	// Test 2 - summary counts outcomes.
	r.Start("orders")
	r.Finish("orders", "VERIFIED", "/out/orders_20200101.psv", 10, nil)
	r.Start("users")
	r.Finish("users", "FAILED", "", 0, errors.New("boom"))
	r.PublishFailed("orders", errors.New("no bucket"))
	sum := r.Summary()
	if sum.Datasets != 3 || sum.Succeeded != 1 || sum.Failed != 1 || sum.Pending != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.TotalRows != 10 || sum.PublishErrors != 1 {
		t.Fatalf("unexpected totals: %+v", sum)
	}
	if got = r.GetStats(); got[1].ErrorText != "boom" {
		t.Fatalf("expected error text to be saved, got %q", got[1].ErrorText)
	}
	r.LogStats()
}

func TestRunStatsConcurrent(t *testing.T) {
	r := NewRunStats(nil)
	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a'+i%26)) + string(rune('a'+i/26))
			r.Start(name)
			r.Finish(name, "VERIFIED", "", 1, nil)
		}(i)
	}
	wg.Wait()
	if sum := r.Summary(); sum.Succeeded != 50 || sum.TotalRows != 50 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
