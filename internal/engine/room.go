package engine

import (
	"context"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"liap/internal/config"
	"liap/internal/domain"
	"liap/internal/event"
)

// mailboxSize bounds the per-room action queue. Producers block briefly under
// burst rather than reordering.
const mailboxSize = 64

type envelope struct {
	action GameAction
	reply  chan ActionResult
}

type snapshotRequest struct {
	reply chan Snapshot
}

// Snapshot is a non-mutating point-in-time copy of a room's state.
type Snapshot struct {
	RoomID  string
	Game    *domain.Game
	LastSeq uint64
}

// Room owns one game's serial action-processing unit: a single consumer
// goroutine that sleeps on an empty mailbox and wakes only on action arrival.
// Actions for a room are never evaluated concurrently; different rooms are
// fully independent.
type Room struct {
	ID string

	machine *Machine
	store   event.Store
	log     zerolog.Logger

	mailbox chan envelope
	queries chan snapshotRequest
	quit    chan struct{}
	done    chan struct{}

	closeOnce sync.Once
}

// NewRoom starts a room's processing unit. When the store already holds a log
// for this id the room resumes from replayed state; a RecoveryError falls
// back to a fresh Waiting phase and is never propagated to other rooms.
func NewRoom(id string, cfg *config.GameConfig, store event.Store, rng *rand.Rand, log zerolog.Logger) *Room {
	r := &Room{
		ID:      id,
		store:   store,
		log:     log.With().Str("room", id).Logger(),
		mailbox: make(chan envelope, mailboxSize),
		queries: make(chan snapshotRequest),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	r.machine = r.recoverMachine(cfg, rng)
	go r.run()
	return r
}

func (r *Room) recoverMachine(cfg *config.GameConfig, rng *rand.Rand) *Machine {
	events, err := r.store.Since(context.Background(), r.ID, 0)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to load event log; starting fresh")
		return NewMachine(r.ID, cfg, rng, r.log)
	}
	if len(events) == 0 {
		return NewMachine(r.ID, cfg, rng, r.log)
	}
	game, lastSeq, err := event.Replay(r.ID, events)
	if err != nil {
		r.log.Error().Err(err).Msg("event log replay failed; starting fresh")
		return NewMachine(r.ID, cfg, rng, r.log)
	}
	r.log.Info().Uint64("last_seq", lastSeq).Msg("room recovered from event log")
	return ResumeMachine(r.ID, game, lastSeq, cfg, rng, r.log)
}

func (r *Room) run() {
	defer close(r.done)
	for {
		select {
		case env := <-r.mailbox:
			result, events := r.machine.Apply(env.action)
			for _, ev := range events {
				if err := r.store.Append(context.Background(), r.ID, ev); err != nil {
					r.log.Error().Err(err).Uint64("seq", ev.Seq).Msg("event append failed")
				}
			}
			env.reply <- result
		case q := <-r.queries:
			q.reply <- Snapshot{
				RoomID:  r.ID,
				Game:    r.machine.Game().Clone(),
				LastSeq: r.machine.LastSeq(),
			}
		case <-r.quit:
			return
		}
	}
}

// Submit enqueues an action and waits for its result. The full mutation,
// event emission, and transition sequence for the action commits before the
// result is returned.
func (r *Room) Submit(ctx context.Context, a GameAction) ActionResult {
	env := envelope{action: a, reply: make(chan ActionResult, 1)}
	select {
	case r.mailbox <- env:
	case <-r.quit:
		return ActionResult{Err: ErrRoomClosed}
	case <-ctx.Done():
		return ActionResult{Err: ctx.Err()}
	}
	select {
	case res := <-env.reply:
		return res
	case <-r.done:
		// The worker may have replied just before shutting down.
		select {
		case res := <-env.reply:
			return res
		default:
			return ActionResult{Err: ErrRoomClosed}
		}
	case <-ctx.Done():
		return ActionResult{Err: ctx.Err()}
	}
}

// Snapshot returns a point-in-time copy taken between actions.
func (r *Room) Snapshot(ctx context.Context) (Snapshot, error) {
	req := snapshotRequest{reply: make(chan Snapshot, 1)}
	select {
	case r.queries <- req:
	case <-r.quit:
		return Snapshot{}, ErrRoomClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-req.reply:
		return snap, nil
	case <-r.done:
		select {
		case snap := <-req.reply:
			return snap, nil
		default:
			return Snapshot{}, ErrRoomClosed
		}
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// EventsSince returns the room's events after the given sequence, for
// reconnect resynchronization. Reads go straight to the store, which is safe
// for concurrent use.
func (r *Room) EventsSince(ctx context.Context, seq uint64) ([]event.Event, error) {
	return r.store.Since(ctx, r.ID, seq)
}

// Close stops the processing unit. Pending submissions receive ErrRoomClosed.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.quit)
		<-r.done
	})
}
