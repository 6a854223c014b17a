package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mnemo/internal/models"
)

var (
	cardDeckFlag string
	cardTagsFlag []string
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Manage cards",
}

var cardAddCmd = &cobra.Command{
	Use:   "add <question> <answer>",
	Short: "Add a card to a deck",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deckID, err := uuid.Parse(cardDeckFlag)
		if err != nil {
			return fmt.Errorf("invalid deck id: %w", err)
		}

		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		card := models.NewCard(deckID, args[0], args[1], cardTagsFlag)
		if err := a.cards.AddCard(cmd.Context(), &card); err != nil {
			return err
		}
		fmt.Printf("Added card %s\n", card.ID)
		return nil
	},
}

func init() {
	cardAddCmd.Flags().StringVar(&cardDeckFlag, "deck", "", "deck ID (required)")
	cardAddCmd.Flags().StringSliceVar(&cardTagsFlag, "tags", nil, "comma-separated concept tags")
	cardAddCmd.MarkFlagRequired("deck")
	cardCmd.AddCommand(cardAddCmd)
	rootCmd.AddCommand(cardCmd)
}
