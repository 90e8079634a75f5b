package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"liap/internal/event"
)

var (
	replayRoom    string
	replaySince   uint64
	replayEnv     string
	replayVerbose bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Rebuild a room's state from its archived event log",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayEnv != "" {
			if err := godotenv.Load(replayEnv); err != nil {
				return fmt.Errorf("load env file: %w", err)
			}
		} else {
			// Optional by convention; absence just means the DSN comes from
			// the process environment.
			_ = godotenv.Load()
		}

		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}

		ctx := cmd.Context()
		store, err := event.OpenPG(ctx, dsn)
		if err != nil {
			return fmt.Errorf("open event store: %w", err)
		}
		defer store.Close()

		// Replay always consumes the full log; the reducer needs a contiguous
		// sequence from the start. --since only trims the listing.
		events, err := store.Since(ctx, replayRoom, 0)
		if err != nil {
			return fmt.Errorf("read log for %s: %w", replayRoom, err)
		}
		if len(events) == 0 {
			return fmt.Errorf("no events for room %s", replayRoom)
		}

		if replayVerbose {
			for _, ev := range events {
				if ev.Seq <= replaySince {
					continue
				}
				fmt.Printf("%6d  %-20s  %s\n", ev.Seq, ev.Type, ev.Payload)
			}
		}

		game, lastSeq, err := event.Replay(replayRoom, events)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(game, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("room %s replayed to seq %d, phase %s\n%s\n", replayRoom, lastSeq, game.Phase, out)
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayRoom, "room", "", "room id to replay")
	replayCmd.MarkFlagRequired("room")
	replayCmd.Flags().Uint64Var(&replaySince, "since", 0, "with --verbose, list only events after this sequence")
	replayCmd.Flags().StringVar(&replayEnv, "env", "", "path to a .env file holding DATABASE_URL")
	replayCmd.Flags().BoolVarP(&replayVerbose, "verbose", "v", false, "print every event before the final state")
	rootCmd.AddCommand(replayCmd)
}
