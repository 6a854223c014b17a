package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mnemo/internal/models"
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Manage decks",
}

var deckCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		deck := models.NewDeck(args[0])
		if err := a.cards.CreateDeck(cmd.Context(), deck); err != nil {
			return err
		}
		fmt.Printf("Created deck %q (%s)\n", deck.Name, deck.ID)
		return nil
	},
}

var deckListCmd = &cobra.Command{
	Use:   "list",
	Short: "List decks",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		decks, err := a.cards.ListDecks(cmd.Context())
		if err != nil {
			return err
		}
		if len(decks) == 0 {
			fmt.Println("No decks yet. Create one with: mnemo deck create <name>")
			return nil
		}
		for id, name := range decks {
			fmt.Printf("%s  %s\n", id, name)
		}
		return nil
	},
}

func init() {
	deckCmd.AddCommand(deckCreateCmd, deckListCmd)
	rootCmd.AddCommand(deckCmd)
}
