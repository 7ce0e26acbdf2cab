package core

import (
	"fmt"
	"sync"
	"testing"
)

func testEmail(id string, category Category) Email {
	return Email{ID: id, Sender: "Boss", Subject: "Report Due", Size: DefaultEmailSize, Category: category}
}

func TestInboxAddRespectsCapacity(t *testing.T) {
	in := NewInbox(3)

	for i := 0; i < 3; i++ {
		if !in.Add(testEmail(fmt.Sprintf("e%d", i), CategoryWork)) {
			t.Fatalf("add %d rejected, want accepted", i)
		}
	}
	if in.CurrentSize() != 3 {
		t.Errorf("CurrentSize() = %d, want 3", in.CurrentSize())
	}
	if !in.IsFull() {
		t.Errorf("IsFull() = false at 3/3")
	}

	if in.Add(testEmail("e3", CategoryWork)) {
		t.Errorf("fourth add accepted, want rejected")
	}
	if in.CurrentSize() != 3 || in.Len() != 3 {
		t.Errorf("rejected add changed inbox: size=%d len=%d", in.CurrentSize(), in.Len())
	}
}

func TestInboxRemove(t *testing.T) {
	in := NewInbox(5)
	in.Add(testEmail("a", CategoryWork))
	in.Add(testEmail("b", CategoryScam))
	in.Add(testEmail("c", CategoryPersonal))

	if !in.Remove("b") {
		t.Fatalf("Remove(b) = false")
	}
	if in.Remove("b") {
		t.Errorf("second Remove(b) = true, want no-op")
	}

	snap := in.Snapshot()
	if snap.Used != 2 || len(snap.Emails) != 2 {
		t.Fatalf("snapshot used=%d len=%d, want 2/2", snap.Used, len(snap.Emails))
	}
	if snap.Emails[0].ID != "a" || snap.Emails[1].ID != "c" {
		t.Errorf("order = [%s %s], want [a c]", snap.Emails[0].ID, snap.Emails[1].ID)
	}
}

func TestInboxSetCapacityBelowUsage(t *testing.T) {
	in := NewInbox(3)
	in.Add(testEmail("a", CategoryWork))
	in.Add(testEmail("b", CategoryWork))

	in.SetCapacity(1)
	if in.Len() != 2 {
		t.Errorf("shrinking evicted emails: len=%d", in.Len())
	}
	if in.Add(testEmail("c", CategoryWork)) {
		t.Errorf("add accepted while over capacity")
	}

	in.Remove("a")
	in.Remove("b")
	if !in.Add(testEmail("c", CategoryWork)) {
		t.Errorf("add rejected after usage dropped")
	}

	in.IncreaseCapacity(4)
	if in.Capacity() != 5 {
		t.Errorf("Capacity() = %d, want 5", in.Capacity())
	}
}

func TestInboxSnapshotIsCopy(t *testing.T) {
	in := NewInbox(2)
	in.Add(testEmail("a", CategoryWork))

	snap := in.Snapshot()
	snap.Emails[0].Subject = "changed"

	got, _ := in.Get("a")
	if got.Subject == "changed" {
		t.Errorf("snapshot shares storage with inbox")
	}
}

func TestInboxConcurrentAddRemove(t *testing.T) {
	in := NewInbox(10)
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("%d-%d", w, i)
				if in.Add(testEmail(id, CategoryWork)) && i%2 == 0 {
					in.Remove(id)
				}
				if used := in.CurrentSize(); used > 10 {
					t.Errorf("usage %d exceeded capacity", used)
				}
			}
		}(w)
	}
	wg.Wait()

	snap := in.Snapshot()
	if snap.Used != len(snap.Emails) {
		t.Errorf("used=%d but %d emails of size 1", snap.Used, len(snap.Emails))
	}
	if snap.Used > snap.Capacity {
		t.Errorf("used=%d > capacity=%d", snap.Used, snap.Capacity)
	}
}
