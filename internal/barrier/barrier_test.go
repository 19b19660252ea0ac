package barrier

import (
	"errors"
	"testing"
)

func TestCallbackFiresOnceAfterLastMember(t *testing.T) {
	b := New[string]()
	fired := 0
	if !b.Register([]string{"A", "B", "C"}, func() error { fired++; return nil }) {
		t.Fatalf("register rejected")
	}

	for i, id := range []string{"A", "B", "C"} {
		ok, err := b.MarkDone(id)
		if !ok || err != nil {
			t.Fatalf("MarkDone(%s) = %v, %v", id, ok, err)
		}
		want := 0
		if i == 2 {
			want = 1
		}
		if fired != want {
			t.Fatalf("after %s fired=%d, want %d", id, fired, want)
		}
	}

	ok, err := b.MarkDone("B")
	if ok || err != nil {
		t.Fatalf("extra completion should be a no-op, got %v, %v", ok, err)
	}
	if fired != 1 {
		t.Fatalf("callback fired %d times", fired)
	}
	if b.Len() != 0 {
		t.Fatalf("expected cleared registration, %d pending", b.Len())
	}
}

func TestDoubleDoneInOpenRegistration(t *testing.T) {
	b := New[int]()
	b.Register([]int{1, 2}, func() error { return nil })
	if _, err := b.MarkDone(1); err != nil {
		t.Fatalf("first MarkDone: %v", err)
	}
	if _, err := b.MarkDone(1); !errors.Is(err, ErrAlreadyDone) {
		t.Fatalf("expected ErrAlreadyDone, got %v", err)
	}
	if !b.Pending(1) || b.Waiting(1) || !b.Waiting(2) {
		t.Fatalf("unexpected pending state")
	}
}

func TestRegisterRejectsBusyMember(t *testing.T) {
	b := New[int]()
	first := 0
	if !b.Register([]int{1, 2}, func() error { first++; return nil }) {
		t.Fatalf("first register rejected")
	}
	if b.Register([]int{2, 3}, func() error { return nil }) {
		t.Fatalf("expected register to be rejected while 2 is pending")
	}
	if b.Pending(3) {
		t.Fatalf("rejected registration must not claim 3")
	}
	if b.Register(nil, func() error { return nil }) {
		t.Fatalf("empty registration should be rejected")
	}
	b.MarkDone(1)
	b.MarkDone(2)
	if first != 1 {
		t.Fatalf("first registration should still fire, fired=%d", first)
	}
}

func TestReRegisterFromCallback(t *testing.T) {
	b := New[int]()
	var order []string
	b.Register([]int{1}, func() error {
		order = append(order, "first")
		if !b.Register([]int{1}, func() error {
			order = append(order, "second")
			return nil
		}) {
			t.Fatalf("re-register from callback rejected")
		}
		return nil
	})
	b.MarkDone(1)
	b.MarkDone(1)
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected callback order %v", order)
	}
}

func TestCallbackErrorIsReturned(t *testing.T) {
	b := New[int]()
	boom := errors.New("boom")
	b.Register([]int{1, 1}, func() error { return boom })
	if _, err := b.MarkDone(1); !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
}
