package reactive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCellGetSet(t *testing.T) {
	c := NewCell(1)
	if got := c.Get(); got != 1 {
		t.Errorf("Get() = %d, want 1", got)
	}

	c.Set(5)
	if got := c.Get(); got != 5 {
		t.Errorf("Get() after Set = %d, want 5", got)
	}

	c.Update(func(n int) int { return n * 2 })
	if got := c.Get(); got != 10 {
		t.Errorf("Get() after Update = %d, want 10", got)
	}
}

func TestCellNotifiesInSubscriptionOrder(t *testing.T) {
	c := NewCell("")
	var calls []string

	c.Subscribe(func(v string) { calls = append(calls, "a:"+v) })
	c.Subscribe(func(v string) { calls = append(calls, "b:"+v) })
	c.Subscribe(func(v string) { calls = append(calls, "c:"+v) })

	c.Set("x")
	c.Set("y")

	want := []string{"a:x", "b:x", "c:x", "a:y", "b:y", "c:y"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("notification order (-want +got):\n%s", diff)
	}
}

func TestCellDoesNotDedupeEqualWrites(t *testing.T) {
	c := NewCell(3)
	count := 0
	c.Subscribe(func(int) { count++ })

	c.Set(3)
	c.Set(3)

	if count != 2 {
		t.Errorf("subscriber called %d times, want 2", count)
	}
}

func TestCellReadYourWriteInsideNotification(t *testing.T) {
	c := NewCell(0)
	var seen int
	c.Subscribe(func(int) { seen = c.Get() })

	c.Set(42)
	if seen != 42 {
		t.Errorf("Get() inside subscriber = %d, want 42", seen)
	}
}

func TestCellUnsubscribe(t *testing.T) {
	c := NewCell(0)
	var a, b int
	stopA := c.Subscribe(func(int) { a++ })
	c.Subscribe(func(int) { b++ })

	c.Set(1)
	stopA()
	stopA()
	c.Set(2)

	if a != 1 || b != 2 {
		t.Errorf("a=%d b=%d, want a=1 b=2", a, b)
	}
	if got := c.Subscribers(); got != 1 {
		t.Errorf("Subscribers() = %d, want 1", got)
	}
}

func TestCellUnsubscribeDuringNotification(t *testing.T) {
	c := NewCell(0)
	var calls []string
	var stopSecond func()

	c.Subscribe(func(int) {
		calls = append(calls, "first")
		stopSecond()
	})
	stopSecond = c.Subscribe(func(int) { calls = append(calls, "second") })

	c.Set(1)

	if diff := cmp.Diff([]string{"first"}, calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
}

func TestCellIDsAreUnique(t *testing.T) {
	a := NewCell(0)
	b := NewCell(0)
	if a.ID() == b.ID() {
		t.Error("cells should have distinct IDs")
	}
}
