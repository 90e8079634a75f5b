package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"os"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/rs/zerolog"

	"liap/internal/bot"
	"liap/internal/config"
	"liap/internal/domain"
	"liap/internal/engine"
	"liap/internal/event"
)

// MatchLabel is the JSON label advertised for matchmaking queries.
type MatchLabel struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// MatchState holds the Nakama-side runtime state for one match. The
// authoritative game state lives inside the Room's processing unit; the match
// handler only tracks presences, bot pacing, and the event cursor.
type MatchState struct {
	Room      *engine.Room
	Presences map[string]runtime.Presence
	Agents    map[string]*bot.Agent

	Tick    int64
	LastSeq uint64 // last event sequence dispatched to clients

	BotsEnabled          bool
	BotWaitUntil         int64 // tick when the pending bot should act
	LastSinglePlayerTick int64 // tick when a lone human started waiting

	cfg *config.GameConfig
	rng *rand.Rand
}

func (ms *MatchState) humanSeatCount(snap engine.Snapshot) int {
	count := 0
	for _, id := range snap.Game.Seats {
		if id != "" && !bot.IsBot(id) {
			count++
		}
	}
	return count
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created. Each match owns one Room,
// keyed by the Nakama match id, backed by an in-process event store.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}
	cfg := config.GetGameConfig()

	zlog := zerolog.New(os.Stderr).With().Timestamp().Logger()
	room := engine.NewRoom(matchID, cfg, event.NewMemoryStore(), rand.New(rand.NewSource(time.Now().UnixNano())), zlog)

	state := &MatchState{
		Room:        room,
		Presences:   make(map[string]runtime.Presence),
		Agents:      make(map[string]*bot.Agent),
		BotsEnabled: true,
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["liap_bots_enabled"]; ok {
		state.BotsEnabled = val != "false"
	}

	labelBytes, err := json.Marshal(MatchLabel{Open: 4, Game: "liap", Phase: "waiting"})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	snap, err := matchState.Room.Snapshot(ctx)
	if err != nil {
		return state, false, "room unavailable"
	}

	// Known players may always rejoin; a dropped seat is held for them.
	if _, seated := snap.Game.Players[presence.GetUserId()]; seated {
		return state, true, ""
	}

	// Fresh joins are accepted only pre-game, into an empty seat or a bot's.
	if snap.Game.Phase != domain.PhaseWaiting {
		return state, false, "Game in progress"
	}
	if snap.Game.SeatedCount() < len(snap.Game.Seats) {
		return state, true, ""
	}
	for _, id := range snap.Game.Seats {
		if bot.IsBot(id) {
			return state, true, ""
		}
	}
	return state, false, "Match full"
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		snap, err := matchState.Room.Snapshot(ctx)
		if err != nil {
			logger.Error("MatchJoin: snapshot failed: %v", err)
			continue
		}

		if _, seated := snap.Game.Players[userID]; seated {
			// Reconnect: mark connected and replay the full log privately so
			// the client rebuilds its view.
			res := matchState.Room.Submit(ctx, engine.GameAction{Type: engine.ActionConnect, PlayerID: userID})
			if res.Err != nil {
				logger.Warn("MatchJoin: reconnect for %s rejected: %v", userID, res.Err)
			}
			mh.sendResync(ctx, matchState, dispatcher, logger, userID, 0)
			continue
		}

		// Evict a bot when the lobby is full of them.
		if snap.Game.SeatedCount() == len(snap.Game.Seats) {
			for _, id := range snap.Game.Seats {
				if bot.IsBot(id) {
					logger.Info("MatchJoin: Replacing bot %s with human %s", id, userID)
					matchState.Room.Submit(ctx, engine.GameAction{Type: engine.ActionLeave, PlayerID: id, IsBot: true})
					delete(matchState.Agents, id)
					break
				}
			}
		}

		res := matchState.Room.Submit(ctx, engine.GameAction{Type: engine.ActionJoin, PlayerID: userID})
		if res.Err != nil {
			logger.Warn("MatchJoin: join for %s rejected: %v", userID, res.Err)
		}
	}

	mh.drainEvents(ctx, matchState, dispatcher, logger)
	mh.updateLabel(ctx, matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match. Leaving a
// lobby frees the seat; leaving mid-game only marks the player disconnected,
// so the seat survives for reconnect.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		snap, err := matchState.Room.Snapshot(ctx)
		if err != nil {
			continue
		}
		actionType := engine.ActionDisconnect
		if snap.Game.Phase == domain.PhaseWaiting {
			actionType = engine.ActionLeave
		}
		res := matchState.Room.Submit(ctx, engine.GameAction{Type: actionType, PlayerID: userID})
		if res.Err != nil {
			logger.Warn("MatchLeave: %s for %s rejected: %v", actionType, userID, res.Err)
		}
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		matchState.Room.Close()
		return nil
	}

	mh.drainEvents(ctx, matchState, dispatcher, logger)
	mh.updateLabel(ctx, matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.submit(ctx, matchState, dispatcher, logger, msg.GetUserId(), engine.GameAction{
				Type: engine.ActionStartGame, PlayerID: msg.GetUserId(),
			})
		case OpRedealDecision:
			var req RedealDecisionRequest
			if err := json.Unmarshal(msg.GetData(), &req); err != nil {
				mh.sendError(matchState, dispatcher, logger, msg.GetUserId(), "invalid redeal decision")
				continue
			}
			mh.submit(ctx, matchState, dispatcher, logger, msg.GetUserId(), engine.GameAction{
				Type: engine.ActionRedealDecision, PlayerID: msg.GetUserId(),
				Payload: engine.RedealDecisionPayload{Accept: req.Accept},
			})
		case OpDeclare:
			var req DeclareRequest
			if err := json.Unmarshal(msg.GetData(), &req); err != nil {
				mh.sendError(matchState, dispatcher, logger, msg.GetUserId(), "invalid declaration")
				continue
			}
			mh.submit(ctx, matchState, dispatcher, logger, msg.GetUserId(), engine.GameAction{
				Type: engine.ActionDeclare, PlayerID: msg.GetUserId(),
				Payload: engine.DeclarePayload{Value: req.Value},
			})
		case OpPlayPieces:
			var req PlayPiecesRequest
			if err := json.Unmarshal(msg.GetData(), &req); err != nil {
				mh.sendError(matchState, dispatcher, logger, msg.GetUserId(), "invalid play")
				continue
			}
			pieces, err := piecesFromWire(req.Pieces)
			if err != nil {
				mh.sendError(matchState, dispatcher, logger, msg.GetUserId(), err.Error())
				continue
			}
			mh.submit(ctx, matchState, dispatcher, logger, msg.GetUserId(), engine.GameAction{
				Type: engine.ActionPlayPieces, PlayerID: msg.GetUserId(),
				Payload: engine.PlayPiecesPayload{Pieces: pieces},
			})
		case OpResync:
			var req ResyncRequest
			if err := json.Unmarshal(msg.GetData(), &req); err != nil {
				mh.sendError(matchState, dispatcher, logger, msg.GetUserId(), "invalid resync request")
				continue
			}
			mh.sendResync(ctx, matchState, dispatcher, logger, msg.GetUserId(), req.SinceSeq)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	mh.drainEvents(ctx, matchState, dispatcher, logger)
	return matchState
}

// submit routes one client action into the room and reports rejections back to
// the sender only. Accepted actions surface through the event drain.
func (mh *matchHandler) submit(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, action engine.GameAction) {
	res := state.Room.Submit(ctx, action)
	if res.Err != nil {
		logger.Debug("submit: %s from %s rejected: %v", action.Type, userID, res.Err)
		mh.sendError(state, dispatcher, logger, userID, res.Err.Error())
	}
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	snap, err := state.Room.Snapshot(ctx)
	if err != nil {
		return
	}

	// Auto-fill the lobby with bots when a lone human has waited long enough.
	if snap.Game.Phase == domain.PhaseWaiting {
		if state.humanSeatCount(snap) == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}
			if state.Tick-state.LastSinglePlayerTick >= int64(state.cfg.BotAutoFillDelaySeconds) {
				for i, id := range snap.Game.Seats {
					if id != "" {
						continue
					}
					botID := bot.BotID(i)
					res := state.Room.Submit(ctx, engine.GameAction{Type: engine.ActionJoin, PlayerID: botID, IsBot: true})
					if res.Err != nil {
						logger.Error("processBots: Failed to seat bot %s: %v", botID, res.Err)
						continue
					}
					state.Agents[botID] = bot.NewAgent(botID, bot.NewBaseline(state.cfg))
					logger.Info("processBots: Added bot %s to seat %d", botID, i)
				}
				state.LastSinglePlayerTick = 0
				mh.updateLabel(ctx, state, dispatcher, logger)
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// In-game: pace the pending bot with a human-ish delay, then let its
	// strategy act through the same action path as everyone else.
	pendingID := snap.Game.PendingActorID()
	if pendingID == "" || !bot.IsBot(pendingID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := state.rng.Intn(state.cfg.BotMaxDelaySeconds-state.cfg.BotMinDelaySeconds+1) + state.cfg.BotMinDelaySeconds
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", pendingID, state.BotWaitUntil, state.Tick)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Agents[pendingID]
	if !exists {
		agent = bot.NewAgent(pendingID, bot.NewBaseline(state.cfg))
		state.Agents[pendingID] = agent
	}

	action := agent.Decide(snap.Game)
	if action == nil {
		return
	}
	res := state.Room.Submit(ctx, *action)
	if res.Err != nil {
		logger.Error("processBots: Bot %s action %s rejected: %v", pendingID, action.Type, res.Err)
	}
}

// drainEvents dispatches everything the room emitted since the last loop,
// honoring per-event recipient lists, and refreshes the label on phase change.
func (mh *matchHandler) drainEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	events, err := state.Room.EventsSince(ctx, state.LastSeq)
	if err != nil {
		logger.Error("drainEvents: %v", err)
		return
	}

	phaseChanged := false
	for _, ev := range events {
		state.LastSeq = ev.Seq
		if ev.Type == event.TypePhaseChanged {
			phaseChanged = true
		}
		mh.dispatchEvent(state, dispatcher, logger, ev)
	}

	if phaseChanged {
		mh.updateLabel(ctx, state, dispatcher, logger)
	}
}

func (mh *matchHandler) dispatchEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev event.Event) {
	opCode := eventOpCode(ev.Type)
	if opCode == 0 {
		logger.Warn("dispatchEvent: Unknown event type: %s", ev.Type)
		return
	}

	bytes, err := json.Marshal(ev)
	if err != nil {
		logger.Error("dispatchEvent: Failed to marshal %s: %v", ev.Type, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted events whose recipients are all offline (or bots) must not
		// leak to the rest of the table.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// sendResync replays the event log after the given sequence to one user.
func (mh *matchHandler) sendResync(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, sinceSeq uint64) {
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}

	events, err := state.Room.EventsSince(ctx, sinceSeq)
	if err != nil {
		logger.Error("sendResync: %v", err)
		return
	}

	for _, ev := range events {
		// Private events are replayed only to their owner.
		if len(ev.Recipients) > 0 {
			mine := false
			for _, uid := range ev.Recipients {
				if uid == userID {
					mine = true
					break
				}
			}
			if !mine {
				continue
			}
		}
		opCode := eventOpCode(ev.Type)
		if opCode == 0 {
			continue
		}
		bytes, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		dispatcher.BroadcastMessage(opCode, bytes, []runtime.Presence{presence}, nil, true)
	}
}

// sendError sends a rejection message to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}
	bytes, err := json.Marshal(ErrorMessage{Message: message})
	if err != nil {
		logger.Error("sendError: Failed to marshal: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	snap, err := state.Room.Snapshot(ctx)
	if err != nil {
		return
	}

	open := 0
	if snap.Game.Phase == domain.PhaseWaiting {
		open = len(snap.Game.Seats) - snap.Game.SeatedCount()
	}
	labelBytes, err := json.Marshal(MatchLabel{
		Open:  open,
		Game:  "liap",
		Phase: string(snap.Game.Phase),
	})
	if err != nil {
		logger.Error("updateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("updateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	if matchState, ok := state.(*MatchState); ok {
		matchState.Room.Close()
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
