package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mnemo/internal/velocity"
)

var (
	velocityDeckFlag   string
	velocityWindowFlag int
	bottleneckDeckFlag string
)

var velocityCmd = &cobra.Command{
	Use:   "velocity",
	Short: "Show study velocity and the mastery forecast",
	RunE: func(cmd *cobra.Command, args []string) error {
		deckID, err := uuid.Parse(velocityDeckFlag)
		if err != nil {
			return fmt.Errorf("invalid deck id: %w", err)
		}

		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		window := velocityWindowFlag
		if window <= 0 {
			window = a.cfg.VelocityWindowDays
		}

		report, err := a.engine.GetVelocityReport(cmd.Context(), deckID, window)
		if err != nil {
			return err
		}

		s := report.Snapshot
		fmt.Printf("Last %d days: %.1f cards/day, %.2f mastered/day, %.0f%% efficiency\n",
			s.WindowDays, s.CardsPerDay, s.MasteryPerDay, s.Efficiency*100)

		p := report.Prediction
		if p.Status == velocity.PredictionUnavailable {
			fmt.Printf("Mastery forecast: not enough data yet (%s)\n", p.Reason)
			return nil
		}
		fmt.Printf("Mastery forecast: ~%.0f days (%.0f-%.0f), confidence %.0f%%\n",
			p.EstimatedDays, p.ConfidenceLow, p.ConfidenceHigh, p.ConfidenceScore*100)
		return nil
	},
}

var bottlenecksCmd = &cobra.Command{
	Use:   "bottlenecks",
	Short: "List the cards dragging down mastery progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		deckID, err := uuid.Parse(bottleneckDeckFlag)
		if err != nil {
			return fmt.Errorf("invalid deck id: %w", err)
		}

		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		ctx := cmd.Context()
		ids, err := a.engine.FindBottlenecks(ctx, deckID)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No bottlenecks detected.")
			return nil
		}

		deck, err := a.cards.LoadDeck(ctx, deckID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			card, err := deck.CardByID(id)
			if err != nil {
				return err
			}
			fmt.Printf("%s  reps=%d accuracy=%.0f%%  %s\n",
				card.ID, card.RepetitionCount, card.Accuracy()*100, card.Question)
		}
		return nil
	},
}

func init() {
	velocityCmd.Flags().StringVar(&velocityDeckFlag, "deck", "", "deck ID (required)")
	velocityCmd.Flags().IntVar(&velocityWindowFlag, "window", 0, "window in days (default from config)")
	velocityCmd.MarkFlagRequired("deck")

	bottlenecksCmd.Flags().StringVar(&bottleneckDeckFlag, "deck", "", "deck ID (required)")
	bottlenecksCmd.MarkFlagRequired("deck")

	rootCmd.AddCommand(velocityCmd, bottlenecksCmd)
}
