package sink

import (
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[int](4)

	for i := 1; i <= 3; i++ {
		if !q.Push(i) {
			t.Fatalf("Push(%d) failed", i)
		}
	}

	for i := 1; i <= 3; i++ {
		got, ok := q.TryPop()
		if !ok || got != i {
			t.Errorf("TryPop = (%d, %v), want (%d, true)", got, ok, i)
		}
	}

	if _, ok := q.TryPop(); ok {
		t.Error("expected empty queue")
	}
}

func TestQueue_GrowPreservesOrder(t *testing.T) {
	q := NewQueue[int](2)

	// Wrap the ring first so growth has to unwrap it.
	q.Push(0)
	q.Push(1)
	q.TryPop()
	q.Push(2)

	// Force two doublings.
	for i := 3; i < 10; i++ {
		q.Push(i)
	}

	if q.Len() != 9 {
		t.Fatalf("expected 9 items, got %d", q.Len())
	}
	for i := 1; i < 10; i++ {
		got, ok := q.TryPop()
		if !ok || got != i {
			t.Fatalf("TryPop = (%d, %v), want (%d, true)", got, ok, i)
		}
	}
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := NewQueue[string](1)

	result := make(chan string, 1)
	go func() {
		v, ok := q.Pop()
		if !ok {
			result <- ""
			return
		}
		result <- v
	}()

	time.Sleep(20 * time.Millisecond)
	q.Push("hello")

	select {
	case got := <-result:
		if got != "hello" {
			t.Errorf("got %q, want %q", got, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake on Push")
	}
}

func TestQueue_CloseWakesAndDrains(t *testing.T) {
	q := NewQueue[int](2)
	q.Push(1)
	q.Push(2)

	q.Close()

	if q.Push(3) {
		t.Error("expected Push to fail after Close")
	}

	// Queued items stay poppable after Close.
	if v, ok := q.Pop(); !ok || v != 1 {
		t.Errorf("Pop = (%d, %v), want (1, true)", v, ok)
	}
	if v, ok := q.Pop(); !ok || v != 2 {
		t.Errorf("Pop = (%d, %v), want (2, true)", v, ok)
	}
	if _, ok := q.Pop(); ok {
		t.Error("expected Pop to report closed and drained")
	}
}

func TestQueue_CloseUnblocksWaiters(t *testing.T) {
	q := NewQueue[int](1)

	done := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, ok := q.Pop()
			done <- ok
		}()
	}

	time.Sleep(20 * time.Millisecond)
	q.Close()

	for i := 0; i < 2; i++ {
		select {
		case ok := <-done:
			if ok {
				t.Error("expected blocked Pop to report closed")
			}
		case <-time.After(time.Second):
			t.Fatal("Close did not wake blocked Pop")
		}
	}
}

func TestQueue_Drain(t *testing.T) {
	q := NewQueue[int](4)
	for i := 0; i < 5; i++ {
		q.Push(i)
	}

	first := q.Drain(3)
	if len(first) != 3 || first[0] != 0 || first[2] != 2 {
		t.Errorf("Drain(3) = %v", first)
	}

	rest := q.Drain(0)
	if len(rest) != 2 || rest[0] != 3 || rest[1] != 4 {
		t.Errorf("Drain(0) = %v", rest)
	}

	if q.Drain(0) != nil {
		t.Error("expected nil drain on empty queue")
	}
}

func TestQueue_Stats(t *testing.T) {
	q := NewQueue[int](2)
	q.Push(1)
	q.Push(2)
	q.Push(3) // grows
	q.TryPop()

	stats := q.Stats()
	if stats.Count != 2 {
		t.Errorf("Count = %d, want 2", stats.Count)
	}
	if stats.Capacity != 4 {
		t.Errorf("Capacity = %d, want 4", stats.Capacity)
	}
	if stats.Pushed != 3 || stats.Popped != 1 {
		t.Errorf("Pushed/Popped = %d/%d, want 3/1", stats.Pushed, stats.Popped)
	}
}

func TestQueue_ConcurrentPushPop(t *testing.T) {
	q := NewQueue[int](8)

	const producers = 4
	const perProducer = 250

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}

	received := make(chan int, producers*perProducer)
	var consumers sync.WaitGroup
	for c := 0; c < 2; c++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				v, ok := q.Pop()
				if !ok {
					return
				}
				received <- v
			}
		}()
	}

	wg.Wait()
	q.Close()
	consumers.Wait()
	close(received)

	total := 0
	for range received {
		total++
	}
	if total != producers*perProducer {
		t.Errorf("received %d items, want %d", total, producers*perProducer)
	}
}
