package registry

import (
	"testing"
	"time"
)

func TestQueue_PushPop(t *testing.T) {
	q := NewQueue[int](10)

	for i := 0; i < 5; i++ {
		if !q.Push(i) {
			t.Fatalf("Push(%d) returned false", i)
		}
	}

	if q.Len() != 5 {
		t.Errorf("Len() = %d, want 5", q.Len())
	}

	for i := 0; i < 5; i++ {
		val, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop() returned false for item %d", i)
		}
		if val != i {
			t.Errorf("popped %d, want %d", val, i)
		}
	}

	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueue_DropOldestWhenFull(t *testing.T) {
	q := NewQueue[int](3)

	// Push N+1 items into a queue of capacity N
	for i := 0; i < 4; i++ {
		if !q.Push(i) {
			t.Fatalf("Push(%d) returned false", i)
		}
	}

	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}

	// Oldest (0) was evicted; survivors keep arrival order
	expected := []int{1, 2, 3}
	for _, want := range expected {
		got, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop failed, expected %d", want)
		}
		if got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}

	stats := q.Stats()
	if stats.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", stats.Dropped)
	}
}

func TestQueue_CapacityNeverGrows(t *testing.T) {
	q := NewQueue[int](5)

	for i := 0; i < 100; i++ {
		q.Push(i)
	}

	if q.Cap() != 5 {
		t.Errorf("Cap() = %d, want 5", q.Cap())
	}
	if q.Len() != 5 {
		t.Errorf("Len() = %d, want 5", q.Len())
	}

	// Only the newest 5 remain
	expected := []int{95, 96, 97, 98, 99}
	for _, want := range expected {
		got, ok := q.TryPop()
		if !ok {
			t.Fatalf("TryPop failed, expected %d", want)
		}
		if got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
}

func TestQueue_BlockingPop(t *testing.T) {
	q := NewQueue[int](10)

	received := make(chan int, 1)

	go func() {
		val, ok := q.Pop()
		if ok {
			received <- val
		}
	}()

	// Give receiver time to start waiting
	time.Sleep(10 * time.Millisecond)

	q.Push(42)

	select {
	case val := <-received:
		if val != 42 {
			t.Errorf("received %d, want 42", val)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for blocked Pop")
	}
}

func TestQueue_Close(t *testing.T) {
	q := NewQueue[int](10)

	q.Push(1)
	q.Push(2)

	q.Close()

	if q.Push(3) {
		t.Error("Push should return false after Close")
	}

	// Remaining items still drain
	val, ok := q.TryPop()
	if !ok || val != 1 {
		t.Errorf("TryPop() = %d, %v; want 1, true", val, ok)
	}

	val, ok = q.Pop()
	if !ok || val != 2 {
		t.Errorf("Pop() = %d, %v; want 2, true", val, ok)
	}

	_, ok = q.Pop()
	if ok {
		t.Error("Pop should return false when closed and empty")
	}
}

func TestQueue_CloseUnblocksPop(t *testing.T) {
	q := NewQueue[int](10)

	done := make(chan bool, 1)

	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)

	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("Pop should return false when closed and empty")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock Pop")
	}
}

func TestQueue_Drain(t *testing.T) {
	q := NewQueue[int](10)

	for i := 0; i < 10; i++ {
		q.Push(i)
	}

	items := q.Drain(5)
	if len(items) != 5 {
		t.Errorf("Drain(5) returned %d items, want 5", len(items))
	}
	for i, val := range items {
		if val != i {
			t.Errorf("items[%d] = %d, want %d", i, val, i)
		}
	}

	if q.Len() != 5 {
		t.Errorf("Len() = %d, want 5", q.Len())
	}

	// max <= 0 drains everything
	items = q.Drain(0)
	if len(items) != 5 {
		t.Errorf("Drain(0) returned %d items, want 5", len(items))
	}

	if items := q.Drain(10); items != nil {
		t.Errorf("Drain on empty queue = %v, want nil", items)
	}
}

func TestQueue_Stats(t *testing.T) {
	q := NewQueue[int](2)

	stats := q.Stats()
	if stats.Count != 0 || stats.Capacity != 2 || stats.TotalPushed != 0 {
		t.Errorf("initial stats incorrect: %+v", stats)
	}

	q.Push(1)
	q.Push(2)
	q.Push(3) // evicts 1
	q.TryPop()

	stats = q.Stats()
	if stats.TotalPushed != 3 {
		t.Errorf("TotalPushed = %d, want 3", stats.TotalPushed)
	}
	if stats.TotalPopped != 1 {
		t.Errorf("TotalPopped = %d, want 1", stats.TotalPopped)
	}
	if stats.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", stats.Dropped)
	}
	if stats.Count != 1 {
		t.Errorf("Count = %d, want 1", stats.Count)
	}
}

func TestNewQueue_MinCapacity(t *testing.T) {
	q := NewQueue[int](0)
	if q.Cap() != 1 {
		t.Errorf("Cap() = %d, want 1 for capacity 0", q.Cap())
	}

	q = NewQueue[int](-5)
	if q.Cap() != 1 {
		t.Errorf("Cap() = %d, want 1 for negative capacity", q.Cap())
	}
}
