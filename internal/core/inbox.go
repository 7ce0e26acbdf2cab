package core

import (
	"sync"
)

// Inbox is a bounded, size weighted collection of emails kept in arrival
// order. It is safe for concurrent use.
type Inbox struct {
	mu       sync.RWMutex
	emails   []Email
	used     int
	capacity int
}

// NewInbox creates an empty inbox holding up to capacity units
func NewInbox(capacity int) *Inbox {
	return &Inbox{
		emails:   make([]Email, 0, capacity),
		capacity: capacity,
	}
}

// Add appends email if it fits. It returns false and leaves the inbox
// untouched when the email would push usage past the capacity.
func (in *Inbox) Add(email Email) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.used+email.Size > in.capacity {
		return false
	}
	in.emails = append(in.emails, email)
	in.used += email.Size
	return true
}

// Remove deletes the email with the given ID. It reports whether anything
// was removed.
func (in *Inbox) Remove(id string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	for i, e := range in.emails {
		if e.ID == id {
			in.emails = append(in.emails[:i], in.emails[i+1:]...)
			in.used -= e.Size
			return true
		}
	}
	return false
}

// Get returns the email with the given ID
func (in *Inbox) Get(id string) (Email, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	for _, e := range in.emails {
		if e.ID == id {
			return e, true
		}
	}
	return Email{}, false
}

// CurrentSize returns the summed size of the contained emails
func (in *Inbox) CurrentSize() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.used
}

// IsFull reports whether usage has reached the capacity
func (in *Inbox) IsFull() bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.used >= in.capacity
}

// Capacity returns the current ceiling
func (in *Inbox) Capacity() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.capacity
}

// SetCapacity replaces the ceiling. Existing contents are never evicted,
// a capacity below current usage only blocks further adds.
func (in *Inbox) SetCapacity(capacity int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.capacity = capacity
}

// IncreaseCapacity raises the ceiling by delta
func (in *Inbox) IncreaseCapacity(delta int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.capacity += delta
}

// Len returns the number of emails held
func (in *Inbox) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.emails)
}

// Snapshot returns a copy of the contents together with usage and capacity
func (in *Inbox) Snapshot() InboxSnapshot {
	in.mu.RLock()
	defer in.mu.RUnlock()

	emails := make([]Email, len(in.emails))
	copy(emails, in.emails)
	return InboxSnapshot{
		Emails:   emails,
		Used:     in.used,
		Capacity: in.capacity,
	}
}
