package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"liap/internal/config"
	"liap/internal/domain"
	"liap/internal/event"
)

// Machine owns one room's game state, the current phase handler, and the
// per-room event sequence. It is not safe for concurrent use; a Room drives
// it from a single goroutine.
type Machine struct {
	roomID   string
	game     *domain.Game
	cfg      *config.GameConfig
	rng      *rand.Rand
	log      zerolog.Logger
	handlers map[domain.Phase]phaseHandler

	seq     uint64
	pending []event.Event
	now     func() time.Time
}

// NewMachine returns a machine holding a fresh game in the Waiting phase.
func NewMachine(roomID string, cfg *config.GameConfig, rng *rand.Rand, log zerolog.Logger) *Machine {
	return newMachine(roomID, domain.NewGame(), 0, cfg, rng, log)
}

// ResumeMachine returns a machine continuing from replayed state. lastSeq is
// the sequence of the final event applied during replay.
func ResumeMachine(roomID string, game *domain.Game, lastSeq uint64, cfg *config.GameConfig, rng *rand.Rand, log zerolog.Logger) *Machine {
	return newMachine(roomID, game, lastSeq, cfg, rng, log)
}

func newMachine(roomID string, game *domain.Game, seq uint64, cfg *config.GameConfig, rng *rand.Rand, log zerolog.Logger) *Machine {
	if cfg == nil {
		cfg = config.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m := &Machine{
		roomID: roomID,
		game:   game,
		cfg:    cfg,
		rng:    rng,
		log:    log.With().Str("room", roomID).Logger(),
		seq:    seq,
		now:    time.Now,
	}
	m.handlers = map[domain.Phase]phaseHandler{
		domain.PhaseWaiting:     waitingHandler{},
		domain.PhasePreparation: preparationHandler{},
		domain.PhaseDeclaration: declarationHandler{},
		domain.PhaseTurn:        turnHandler{},
		domain.PhaseTurnResults: turnResultsHandler{},
		domain.PhaseScoring:     scoringHandler{},
		domain.PhaseGameOver:    gameOverHandler{},
	}
	return m
}

// Game exposes the live state for the owning Room. Callers outside the room
// goroutine must use a cloned snapshot instead.
func (m *Machine) Game() *domain.Game { return m.game }

// LastSeq returns the sequence of the most recently emitted event.
func (m *Machine) LastSeq() uint64 { return m.seq }

// Apply runs one action through the current phase handler and the transition
// loop. It is atomic: on rejection nothing has mutated and no events are
// returned; on acceptance the returned events are the complete record of what
// changed, in emission order.
func (m *Machine) Apply(a GameAction) (ActionResult, []event.Event) {
	m.pending = nil
	startSeq := m.seq

	reject := func(err error) (ActionResult, []event.Event) {
		m.pending = nil
		m.seq = startSeq
		return ActionResult{Accepted: false, Err: err}, nil
	}

	// Connection changes are phase-independent.
	if a.Type == ActionConnect || a.Type == ActionDisconnect {
		if err := m.applyConnectionChange(a); err != nil {
			return reject(err)
		}
		return ActionResult{Accepted: true}, m.take()
	}

	if !allowedActions[m.game.Phase][a.Type] {
		return reject(fmt.Errorf("%w: %s during %s", ErrActionNotAllowed, a.Type, m.game.Phase))
	}

	t, err := m.handlers[m.game.Phase].onAction(m, a)
	if err != nil {
		return reject(err)
	}
	for t != nil {
		t = m.performTransition(t.to)
	}
	return ActionResult{Accepted: true}, m.take()
}

func (m *Machine) applyConnectionChange(a GameAction) error {
	p, ok := m.game.Players[a.PlayerID]
	if !ok {
		return fmt.Errorf("%w: unknown player %s", ErrValidation, a.PlayerID)
	}
	connected := a.Type == ActionConnect
	if p.Connected == connected {
		return nil
	}
	p.Connected = connected
	typ := event.TypePlayerConnected
	if !connected {
		typ = event.TypePlayerDisconnected
	}
	m.emit(typ, event.ConnectionPayload{PlayerID: a.PlayerID}, nil, nil)
	return nil
}

// performTransition swaps phases: exit hook, replacement, phase_changed
// event, entry hook. The entry hook may chain another transition, which is
// returned for the caller's loop.
func (m *Machine) performTransition(to domain.Phase) *transition {
	from := m.game.Phase
	if !transitionLegal(from, to) {
		m.log.Error().Err(ErrInvalidTransition).Str("from", string(from)).Str("to", string(to)).
			Msg("phase linkage table is inconsistent")
		return nil
	}
	m.handlers[from].onExit(m)
	m.game.Phase = to
	m.emit(event.TypePhaseChanged, event.PhaseChangedPayload{From: from, To: to}, nil, nil)
	return m.handlers[to].onEnter(m)
}

// emit records an event in the pending buffer with the next sequence number.
func (m *Machine) emit(typ event.Type, payload any, display *event.DisplayHint, recipients []string) {
	data, err := json.Marshal(payload)
	if err != nil {
		m.log.Error().Err(err).Str("type", string(typ)).Msg("failed to marshal event payload")
		return
	}
	m.seq++
	m.pending = append(m.pending, event.Event{
		Seq:        m.seq,
		Type:       typ,
		Payload:    data,
		Display:    display,
		Recipients: recipients,
		At:         m.now().UTC(),
	})
}

func (m *Machine) take() []event.Event {
	out := m.pending
	m.pending = nil
	return out
}
