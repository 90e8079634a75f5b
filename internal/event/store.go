package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfOrder is returned by a store when an append would break the
// contiguous per-room sequence.
var ErrOutOfOrder = errors.New("event sequence out of order")

// RecoveryError signals a corrupted or missing log segment during replay. It
// is isolated to the affected room; callers fall back to a fresh Waiting
// phase instead of propagating the failure.
type RecoveryError struct {
	RoomID string
	Reason string
	Err    error
}

func (e *RecoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recovery failed for room %s: %s: %v", e.RoomID, e.Reason, e.Err)
	}
	return fmt.Sprintf("recovery failed for room %s: %s", e.RoomID, e.Reason)
}

func (e *RecoveryError) Unwrap() error { return e.Err }

// Store is an append-only per-room event log. Append order must match
// application order; Since supports reconnect diffing.
type Store interface {
	Append(ctx context.Context, roomID string, ev Event) error
	// Since returns all events with Seq > seq, in order. Since(ctx, room, 0)
	// loads the full log.
	Since(ctx context.Context, roomID string, seq uint64) ([]Event, error)
}

// MemoryStore keeps per-room logs in process. It is the store used by live
// rooms: appends never touch I/O on the action path.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[string][]Event
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[string][]Event)}
}

// Append adds an event to the room's log, enforcing contiguous sequencing.
func (s *MemoryStore) Append(_ context.Context, roomID string, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.logs[roomID]
	if want := uint64(len(log)) + 1; ev.Seq != want {
		return fmt.Errorf("%w: room %s got seq %d want %d", ErrOutOfOrder, roomID, ev.Seq, want)
	}
	s.logs[roomID] = append(log, ev)
	return nil
}

// Since returns a copy of the room's events with Seq > seq.
func (s *MemoryStore) Since(_ context.Context, roomID string, seq uint64) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[roomID]
	if seq >= uint64(len(log)) {
		return nil, nil
	}
	out := make([]Event, len(log)-int(seq))
	copy(out, log[seq:])
	return out, nil
}
