package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	graphDeckFlag   string
	graphFormatFlag string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the knowledge graph for a deck",
	Long: `Build the concept knowledge graph from the deck's tags and export it.
Formats: json (structured, round-trippable) or dot (Graphviz, for a picture).
Both are derived from the same in-memory graph.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deckID, err := uuid.Parse(graphDeckFlag)
		if err != nil {
			return fmt.Errorf("invalid deck id: %w", err)
		}

		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		g, err := a.engine.GetKnowledgeGraph(cmd.Context(), deckID)
		if err != nil {
			return err
		}

		switch graphFormatFlag {
		case "json":
			data, err := json.MarshalIndent(g.Export(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		case "dot":
			fmt.Print(g.DOT())
		default:
			return fmt.Errorf("unknown format %q, want json or dot", graphFormatFlag)
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().StringVar(&graphDeckFlag, "deck", "", "deck ID (required)")
	graphCmd.Flags().StringVar(&graphFormatFlag, "format", "json", "output format: json or dot")
	graphCmd.MarkFlagRequired("deck")
	rootCmd.AddCommand(graphCmd)
}
