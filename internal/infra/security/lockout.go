package security

import (
	"sync"
	"time"
)

const (
	// DefaultLockoutThreshold is the failure count at which an address is
	// blocked from further authentication attempts.
	DefaultLockoutThreshold = 5
	// DefaultDecayWindow is how long a failure record survives without
	// further failures before it is forgiven.
	DefaultDecayWindow = time.Hour
)

type failureRecord struct {
	attempts    int
	lastFailure time.Time
}

// LockoutTracker maintains per-client-address failure counters with
// time-based decay. State is process-wide and resets on restart. All
// methods are safe for concurrent use; updates to a single address are
// serialized so simultaneous failures never lose increments.
type LockoutTracker struct {
	mu        sync.Mutex
	records   map[string]*failureRecord
	threshold int
	decay     time.Duration
	now       func() time.Time
}

// NewLockoutTracker constructs a tracker with the provided threshold and
// decay window, falling back to defaults for non-positive values.
func NewLockoutTracker(threshold int, decay time.Duration) *LockoutTracker {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	if decay <= 0 {
		decay = DefaultDecayWindow
	}
	return &LockoutTracker{
		records:   make(map[string]*failureRecord),
		threshold: threshold,
		decay:     decay,
		now:       time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (t *LockoutTracker) WithClock(now func() time.Time) *LockoutTracker {
	if now != nil {
		t.now = now
	}
	return t
}

// RecordFailure registers a failed authentication attempt for the address
// and returns the updated attempt count.
func (t *LockoutTracker) RecordFailure(address string) int {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.records[address]
	if !ok || now.Sub(record.lastFailure) > t.decay {
		t.records[address] = &failureRecord{attempts: 1, lastFailure: now}
		return 1
	}

	record.attempts++
	record.lastFailure = now
	return record.attempts
}

// RecordSuccess clears the failure record for the address; successful
// authentication forgives prior failures.
func (t *LockoutTracker) RecordSuccess(address string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, address)
}

// IsLocked reports whether the address has crossed the failure threshold.
// Records older than the decay window are evicted lazily here; there is no
// background sweep.
func (t *LockoutTracker) IsLocked(address string) bool {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.records[address]
	if !ok {
		return false
	}

	if now.Sub(record.lastFailure) > t.decay {
		delete(t.records, address)
		return false
	}

	return record.attempts >= t.threshold
}

// Threshold returns the configured lockout threshold.
func (t *LockoutTracker) Threshold() int {
	return t.threshold
}
