package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"liap/internal/config"
	"liap/internal/event"
)

// ErrRoomNotFound is returned for lookups of unknown room ids.
var ErrRoomNotFound = errors.New("room not found")

// Manager is the room registry. Rooms process independently and concurrently;
// the manager only guards the map.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	cfg    *config.GameConfig
	store  event.Store
	log    zerolog.Logger
	newRNG func() *rand.Rand
}

// NewManager builds a registry over the given store. A nil store defaults to
// an in-process MemoryStore.
func NewManager(cfg *config.GameConfig, store event.Store, log zerolog.Logger) *Manager {
	if store == nil {
		store = event.NewMemoryStore()
	}
	return &Manager{
		rooms: make(map[string]*Room),
		cfg:   cfg,
		store: store,
		log:   log,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// SetRNGFactory overrides per-room rng construction, used for deterministic
// simulation runs.
func (mgr *Manager) SetRNGFactory(f func() *rand.Rand) {
	mgr.newRNG = f
}

// CreateRoom starts a fresh room with a generated id.
func (mgr *Manager) CreateRoom() *Room {
	return mgr.OpenRoom(uuid.NewString())
}

// OpenRoom returns the live room for id, starting (and recovering, when the
// store holds a log) one if needed.
func (mgr *Manager) OpenRoom(id string) *Room {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if r, ok := mgr.rooms[id]; ok {
		return r
	}
	r := NewRoom(id, mgr.cfg, mgr.store, mgr.newRNG(), mgr.log)
	mgr.rooms[id] = r
	return r
}

// GetRoom returns a live room without creating one.
func (mgr *Manager) GetRoom(id string) (*Room, error) {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	r, ok := mgr.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// GetStateSnapshot returns a point-in-time copy of a room's state.
func (mgr *Manager) GetStateSnapshot(ctx context.Context, roomID string) (Snapshot, error) {
	r, err := mgr.GetRoom(roomID)
	if err != nil {
		return Snapshot{}, err
	}
	return r.Snapshot(ctx)
}

// ReplaySince returns a room's events after seq for reconnect resync.
func (mgr *Manager) ReplaySince(ctx context.Context, roomID string, seq uint64) ([]event.Event, error) {
	r, err := mgr.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	return r.EventsSince(ctx, seq)
}

// CloseRoom stops a room's processing unit and drops it from the registry.
func (mgr *Manager) CloseRoom(id string) {
	mgr.mu.Lock()
	r, ok := mgr.rooms[id]
	delete(mgr.rooms, id)
	mgr.mu.Unlock()
	if ok {
		r.Close()
	}
}

// Shutdown closes every room.
func (mgr *Manager) Shutdown() {
	mgr.mu.Lock()
	rooms := make([]*Room, 0, len(mgr.rooms))
	for _, r := range mgr.rooms {
		rooms = append(rooms, r)
	}
	mgr.rooms = make(map[string]*Room)
	mgr.mu.Unlock()
	for _, r := range rooms {
		r.Close()
	}
}
