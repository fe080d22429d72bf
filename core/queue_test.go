package core

import "testing"

func TestPendingQueue_FIFO(t *testing.T) {
	q := newPendingQueue(0)
	for _, s := range []string{"a", "b", "c"} {
		if q.push([]byte(s)) {
			t.Fatalf("unbounded queue evicted on %q", s)
		}
	}

	items := q.drain()
	if len(items) != 3 {
		t.Fatalf("drained %d items, want 3", len(items))
	}
	for i, want := range []string{"a", "b", "c"} {
		if string(items[i]) != want {
			t.Errorf("item %d = %q, want %q", i, items[i], want)
		}
	}
	if q.len() != 0 {
		t.Errorf("len after drain = %d, want 0", q.len())
	}
}

func TestPendingQueue_DropOldest(t *testing.T) {
	q := newPendingQueue(2)
	q.push([]byte("a"))
	q.push([]byte("b"))
	if !q.push([]byte("c")) {
		t.Error("expected eviction when full")
	}

	items := q.drain()
	if len(items) != 2 || string(items[0]) != "b" || string(items[1]) != "c" {
		t.Errorf("items = %q, want [b c]", items)
	}
}
