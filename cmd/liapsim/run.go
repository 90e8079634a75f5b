package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"liap/internal/bot"
	"liap/internal/config"
	"liap/internal/domain"
	"liap/internal/engine"
)

var (
	runSeed    int64
	runGames   int
	runConfig  string
	runVerbose bool
)

// actionCap bounds a single game. A four-seat game touches well under a
// thousand actions; anything past this means the engine stopped advancing.
const actionCap = 10000

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play full games with four baseline bots",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runConfig != "" {
			if err := config.LoadGameConfig(runConfig); err != nil {
				return err
			}
		}
		cfg := config.GetGameConfig()

		level := zerolog.WarnLevel
		if runVerbose {
			level = zerolog.DebugLevel
		}
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

		seed := runSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		fmt.Printf("seed %d\n", seed)

		rng := rand.New(rand.NewSource(seed))
		mgr := engine.NewManager(cfg, nil, log)
		mgr.SetRNGFactory(func() *rand.Rand {
			return rand.New(rand.NewSource(rng.Int63()))
		})
		defer mgr.Shutdown()

		for i := 0; i < runGames; i++ {
			if err := playOneGame(cmd.Context(), mgr, cfg, i+1); err != nil {
				return err
			}
		}
		return nil
	},
}

func playOneGame(ctx context.Context, mgr *engine.Manager, cfg *config.GameConfig, number int) error {
	room := mgr.CreateRoom()
	defer mgr.CloseRoom(room.ID)

	agents := make(map[string]*bot.Agent, domain.PlayerCount)
	for seat := 0; seat < domain.PlayerCount; seat++ {
		id := bot.BotID(seat)
		agents[id] = bot.NewAgent(id, bot.NewBaseline(cfg))
		if res := room.Submit(ctx, engine.GameAction{Type: engine.ActionJoin, PlayerID: id, IsBot: true}); res.Err != nil {
			return fmt.Errorf("game %d: seat %d join: %w", number, seat, res.Err)
		}
	}

	starter := bot.BotID(0)
	if res := room.Submit(ctx, engine.GameAction{Type: engine.ActionStartGame, PlayerID: starter, IsBot: true}); res.Err != nil {
		return fmt.Errorf("game %d: start: %w", number, res.Err)
	}

	for i := 0; i < actionCap; i++ {
		snap, err := room.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("game %d: snapshot: %w", number, err)
		}
		if snap.Game.Phase == domain.PhaseGameOver {
			printResult(number, snap)
			return nil
		}

		pending := snap.Game.PendingActorID()
		if pending == "" {
			return fmt.Errorf("game %d: phase %s waits on nobody", number, snap.Game.Phase)
		}
		agent, ok := agents[pending]
		if !ok {
			return fmt.Errorf("game %d: no agent for %s", number, pending)
		}
		action := agent.Decide(snap.Game)
		if action == nil {
			return fmt.Errorf("game %d: agent %s has no move in %s", number, pending, snap.Game.Phase)
		}
		if res := room.Submit(ctx, *action); res.Err != nil {
			return fmt.Errorf("game %d: %s by %s rejected: %w", number, action.Type, pending, res.Err)
		}
	}
	return fmt.Errorf("game %d: exceeded %d actions without finishing", number, actionCap)
}

func printResult(number int, snap engine.Snapshot) {
	fmt.Printf("game %d: room %s finished after %d events\n", number, snap.RoomID, snap.LastSeq)
	for _, id := range snap.Game.Seats {
		p := snap.Game.Players[id]
		marker := " "
		for _, w := range snap.Game.WinnerIDs {
			if w == id {
				marker = "*"
			}
		}
		fmt.Printf("  %s seat %d %-12s total %d\n", marker, p.Seat, id, p.TotalScore)
	}
}

func init() {
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "rng seed (0 picks one from the clock)")
	runCmd.Flags().IntVar(&runGames, "games", 1, "number of games to play")
	runCmd.Flags().StringVar(&runConfig, "config", "", "path to a game config JSON file")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "log engine internals")
	rootCmd.AddCommand(runCmd)
}
