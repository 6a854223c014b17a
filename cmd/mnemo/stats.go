package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mnemo/internal/models"
)

var statsDeckFlag string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a deck summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		deckID, err := uuid.Parse(statsDeckFlag)
		if err != nil {
			return fmt.Errorf("invalid deck id: %w", err)
		}

		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		stats, err := a.engine.GetDeckStats(cmd.Context(), deckID)
		if err != nil {
			return err
		}

		fmt.Printf("Cards: %d (%d due)\n", stats.TotalCards, stats.DueCards)
		fmt.Printf("Average ease %.2f, average difficulty %.2f\n", stats.AverageEase, stats.AverageDifficulty)
		for _, s := range []models.CardState{models.StateNew, models.StateLearning, models.StateReviewing, models.StateMastered} {
			if n := stats.States[s]; n > 0 {
				fmt.Printf("  %-10s %d\n", s, n)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsDeckFlag, "deck", "", "deck ID (required)")
	statsCmd.MarkFlagRequired("deck")
	rootCmd.AddCommand(statsCmd)
}
