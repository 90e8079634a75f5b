package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"

	"liap/internal/domain"
	"liap/internal/event"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy
// the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records broadcast calls for assertions.
type broadcast struct {
	opCode     int64
	data       []byte
	recipients []runtime.Presence
}

type mockDispatcher struct {
	broadcasts   []broadcast
	labelUpdates []string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcasts = append(md.broadcasts, broadcast{
		opCode:     opCode,
		data:       append([]byte(nil), data...),
		recipients: presences,
	})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error { return nil }

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates = append(md.labelUpdates, label)
	return nil
}

// mockPresence is a minimal runtime.Presence.
type mockPresence struct {
	userID string
}

func (p mockPresence) GetUserId() string    { return p.userID }
func (p mockPresence) GetSessionId() string { return "session-" + p.userID }
func (p mockPresence) GetNodeId() string    { return "node-0" }
func (p mockPresence) GetHidden() bool      { return false }
func (p mockPresence) GetPersistence() bool { return true }
func (p mockPresence) GetUsername() string  { return p.userID }
func (p mockPresence) GetStatus() string    { return "" }
func (p mockPresence) GetReason() runtime.PresenceReason {
	return runtime.PresenceReasonUnknown
}

// mockMatchData carries one client message through MatchLoop.
type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (m mockMatchData) GetOpCode() int64      { return m.opCode }
func (m mockMatchData) GetData() []byte       { return m.data }
func (m mockMatchData) GetReliable() bool     { return true }
func (m mockMatchData) GetReceiveTime() int64 { return 0 }

func newStartedMatch(t *testing.T) (*matchHandler, *MatchState, *mockDispatcher) {
	t.Helper()
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	ctx := context.Background()

	stateIface, tickRate, label := handler.MatchInit(ctx, noopLogger{}, nil, nil, nil)
	if tickRate != 1 || label == "" {
		t.Fatalf("MatchInit returned tickRate=%d label=%q", tickRate, label)
	}
	state := stateIface.(*MatchState)
	t.Cleanup(state.Room.Close)

	users := []string{"u1", "u2", "u3", "u4"}
	for _, id := range users {
		p := mockPresence{userID: id}
		_, allowed, reason := handler.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, p, nil)
		if !allowed {
			t.Fatalf("join attempt for %s rejected: %s", id, reason)
		}
		handler.MatchJoin(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{p})
	}
	return handler, state, dispatcher
}

func TestMatchLabelJSON(t *testing.T) {
	data, err := json.Marshal(MatchLabel{Open: 3, Game: "liap", Phase: "waiting"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"open":3,"game":"liap","phase":"waiting"}`
	if string(data) != want {
		t.Fatalf("label = %s, want %s", data, want)
	}
}

func TestMatchJoinSeatsPlayers(t *testing.T) {
	_, state, dispatcher := newStartedMatch(t)

	snap, err := state.Room.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Game.SeatedCount() != domain.PlayerCount {
		t.Fatalf("seated = %d, want %d", snap.Game.SeatedCount(), domain.PlayerCount)
	}
	if len(dispatcher.labelUpdates) == 0 {
		t.Fatal("no label updates after joins")
	}

	var label MatchLabel
	last := dispatcher.labelUpdates[len(dispatcher.labelUpdates)-1]
	if err := json.Unmarshal([]byte(last), &label); err != nil {
		t.Fatal(err)
	}
	if label.Open != 0 || label.Phase != "waiting" {
		t.Fatalf("label = %+v, want 0 open seats in waiting", label)
	}
}

func TestMatchJoinAttemptRejectsFifthPlayer(t *testing.T) {
	handler, state, dispatcher := newStartedMatch(t)

	_, allowed, reason := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, mockPresence{userID: "u5"}, nil)
	if allowed {
		t.Fatal("fifth join attempt allowed")
	}
	if reason == "" {
		t.Fatal("rejection carries no reason")
	}
}

func TestMatchLoopStartGameDealsPrivateHands(t *testing.T) {
	handler, state, dispatcher := newStartedMatch(t)
	dispatcher.broadcasts = nil

	msg := mockMatchData{mockPresence: mockPresence{userID: "u1"}, opCode: OpStartGame}
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{msg})

	handDeals := 0
	sawStarted := false
	for _, b := range dispatcher.broadcasts {
		switch b.opCode {
		case OpGameStarted:
			sawStarted = true
		case OpHandDealt:
			handDeals++
			if len(b.recipients) != 1 {
				t.Fatalf("hand_dealt sent to %d presences, want 1", len(b.recipients))
			}
			var ev event.Event
			if err := json.Unmarshal(b.data, &ev); err != nil {
				t.Fatal(err)
			}
			var payload event.HandDealtPayload
			if err := ev.Decode(&payload); err != nil {
				t.Fatal(err)
			}
			if b.recipients[0].GetUserId() != payload.PlayerID {
				t.Fatalf("hand for %s sent to %s", payload.PlayerID, b.recipients[0].GetUserId())
			}
			if len(payload.Hand) != domain.HandSize {
				t.Fatalf("dealt %d pieces, want %d", len(payload.Hand), domain.HandSize)
			}
		case OpError:
			t.Fatalf("start flow produced an error message: %s", b.data)
		}
	}
	if !sawStarted || handDeals != domain.PlayerCount {
		t.Fatalf("game_started=%t, %d private hands", sawStarted, handDeals)
	}
}

func TestMatchLoopRejectionGoesOnlyToSender(t *testing.T) {
	handler, state, dispatcher := newStartedMatch(t)
	dispatcher.broadcasts = nil

	// u2 cannot start in another player's stead here: the table is full but
	// declaring before the game starts is simply not allowed.
	msg := mockMatchData{mockPresence: mockPresence{userID: "u2"}, opCode: OpDeclare, data: []byte(`{"value":2}`)}
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{msg})

	if len(dispatcher.broadcasts) != 1 {
		t.Fatalf("broadcasts = %d, want just the error", len(dispatcher.broadcasts))
	}
	b := dispatcher.broadcasts[0]
	if b.opCode != OpError {
		t.Fatalf("opCode = %d, want OpError", b.opCode)
	}
	if len(b.recipients) != 1 || b.recipients[0].GetUserId() != "u2" {
		t.Fatalf("error sent to %+v, want only u2", b.recipients)
	}
}

func TestMatchLoopResyncReplaysLogToRequester(t *testing.T) {
	handler, state, dispatcher := newStartedMatch(t)
	start := mockMatchData{mockPresence: mockPresence{userID: "u1"}, opCode: OpStartGame}
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{start})
	dispatcher.broadcasts = nil

	resync := mockMatchData{mockPresence: mockPresence{userID: "u3"}, opCode: OpResync, data: []byte(`{"since_seq":0}`)}
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.MatchData{resync})

	if len(dispatcher.broadcasts) == 0 {
		t.Fatal("resync produced no messages")
	}
	for _, b := range dispatcher.broadcasts {
		if len(b.recipients) != 1 || b.recipients[0].GetUserId() != "u3" {
			t.Fatalf("resync message sent to %+v, want only u3", b.recipients)
		}
		if b.opCode == OpHandDealt {
			var ev event.Event
			if err := json.Unmarshal(b.data, &ev); err != nil {
				t.Fatal(err)
			}
			var payload event.HandDealtPayload
			if err := ev.Decode(&payload); err != nil {
				t.Fatal(err)
			}
			if payload.PlayerID != "u3" {
				t.Fatalf("resync leaked %s's hand to u3", payload.PlayerID)
			}
		}
	}
}

func TestProcessBotsAutoFillsForSoloHuman(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	ctx := context.Background()

	stateIface, _, _ := handler.MatchInit(ctx, noopLogger{}, nil, nil, nil)
	state := stateIface.(*MatchState)
	t.Cleanup(state.Room.Close)

	p := mockPresence{userID: "u1"}
	handler.MatchJoin(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{p})

	// First tick arms the timer, a later tick past the delay fills the table.
	handler.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, 1, state, nil)
	handler.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, int64(1+state.cfg.BotAutoFillDelaySeconds), state, nil)

	snap, err := state.Room.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Game.SeatedCount() != domain.PlayerCount {
		t.Fatalf("seated = %d after auto-fill, want %d", snap.Game.SeatedCount(), domain.PlayerCount)
	}
	bots := 0
	for _, pl := range snap.Game.Players {
		if pl.IsBot {
			bots++
		}
	}
	if bots != domain.PlayerCount-1 {
		t.Fatalf("bots = %d, want %d", bots, domain.PlayerCount-1)
	}
	if len(state.Agents) != domain.PlayerCount-1 {
		t.Fatalf("agents = %d, want %d", len(state.Agents), domain.PlayerCount-1)
	}
	if state.LastSinglePlayerTick != 0 {
		t.Fatalf("auto-fill timer not reset: %d", state.LastSinglePlayerTick)
	}
}

func TestMatchLeaveMidGameHoldsSeat(t *testing.T) {
	handler, state, dispatcher := newStartedMatch(t)
	start := mockMatchData{mockPresence: mockPresence{userID: "u1"}, opCode: OpStartGame}
	handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{start})

	handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.Presence{mockPresence{userID: "u2"}})

	snap, err := state.Room.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	p, ok := snap.Game.Players["u2"]
	if !ok {
		t.Fatal("mid-game leave removed the player")
	}
	if p.Connected {
		t.Fatal("mid-game leave left the player marked connected")
	}
}

func TestMatchLeaveLastHumanTerminates(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	ctx := context.Background()

	stateIface, _, _ := handler.MatchInit(ctx, noopLogger{}, nil, nil, nil)
	state := stateIface.(*MatchState)

	p := mockPresence{userID: "u1"}
	handler.MatchJoin(ctx, noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{p})
	result := handler.MatchLeave(ctx, noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{p})
	if result != nil {
		t.Fatal("match kept running with no humans")
	}
}
