package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mnemo/internal/engine"
	"mnemo/internal/scheduler"
)

var (
	studyDeckFlag string
	studyModeFlag string
	studySizeFlag int
	studyMixFlag  bool
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Run a study session",
	Long: `Plan a study queue for a deck and review the cards interactively.
Modes: spaced (due cards, most overdue first), random, sequential, difficult.
With --mix the queue is drawn with weighted randomization that favors cards
with low accuracy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deckID, err := uuid.Parse(studyDeckFlag)
		if err != nil {
			return fmt.Errorf("invalid deck id: %w", err)
		}
		mode, err := scheduler.ParseMode(studyModeFlag)
		if err != nil {
			return err
		}

		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		size := studySizeFlag
		if size <= 0 {
			size = a.cfg.SessionSize
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		deck, err := a.cards.LoadDeck(ctx, deckID)
		if err != nil {
			return err
		}

		// Keep a fresh knowledge-graph snapshot in the background while the
		// learner works through the queue.
		refresher := engine.NewRefresher(a.engine, deckID, a.cfg.GraphRefreshInterval)
		go refresher.Run(ctx)

		var queue []uuid.UUID
		if studyMixFlag {
			queue, err = a.engine.PlanMixedSession(ctx, deckID, size)
		} else {
			queue, err = a.engine.PlanSession(ctx, deckID, mode, size)
		}
		if err != nil {
			return err
		}
		if len(queue) == 0 {
			fmt.Println("Nothing to study right now.")
			return nil
		}

		reader := bufio.NewReader(os.Stdin)
		for i, cardID := range queue {
			card, err := deck.CardByID(cardID)
			if err != nil {
				return err
			}

			fmt.Printf("\n[%d/%d] %s\n", i+1, len(queue), card.Question)
			fmt.Print("Press Enter to reveal the answer...")
			reader.ReadString('\n')
			shown := time.Now()

			fmt.Printf("Answer: %s\n", card.Answer)
			correct := askYesNo(reader, "Did you get it right? [y/n]: ")
			confidence := askConfidence(reader)
			responseTime := time.Since(shown).Seconds()

			result, err := a.engine.RecordAnswer(ctx, deckID, cardID, scheduler.Outcome{
				Correct:      correct,
				ResponseTime: responseTime,
				Confidence:   confidence,
			})
			if err != nil {
				return err
			}
			fmt.Printf("State: %s, next review in %d day(s). Difficulty: %s.\n",
				result.State, result.Card.IntervalDays, result.Explanation)
		}

		fmt.Println("\nSession complete.")
		if graph, _, ok := refresher.Snapshot(); ok {
			if gaps := graph.Gaps(); len(gaps) > 0 {
				fmt.Printf("Knowledge gaps to shore up: %s\n", strings.Join(gaps, ", "))
			}
		}
		return nil
	},
}

func askYesNo(reader *bufio.Reader, prompt string) bool {
	for {
		fmt.Print(prompt)
		line, _ := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
}

func askConfidence(reader *bufio.Reader) int {
	for {
		fmt.Print("Confidence 1-5 (Enter to skip): ")
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			return 0
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= 5 {
			return n
		}
	}
}

func init() {
	studyCmd.Flags().StringVar(&studyDeckFlag, "deck", "", "deck ID (required)")
	studyCmd.Flags().StringVar(&studyModeFlag, "mode", "spaced", "study mode: spaced, random, sequential, difficult")
	studyCmd.Flags().IntVar(&studySizeFlag, "size", 0, "queue size (default from config)")
	studyCmd.Flags().BoolVar(&studyMixFlag, "mix", false, "weighted-random queue favoring weak cards")
	studyCmd.MarkFlagRequired("deck")
	rootCmd.AddCommand(studyCmd)
}
