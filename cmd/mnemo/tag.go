package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mnemo/internal/repository"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage the concept tag hierarchy",
}

var tagParentCmd = &cobra.Command{
	Use:   "parent <tag> <parent>",
	Short: "Set a tag's parent concept",
	Long: `Record that <parent> is a prerequisite concept of <tag>. The knowledge
graph turns each parent/child pair into an explicit prerequisite edge.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		tags := repository.NewTagRepository(a.db)
		if err := tags.SetTagParent(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Set %s as parent of %s\n", args[1], args[0])
		return nil
	},
}

func init() {
	tagCmd.AddCommand(tagParentCmd)
	rootCmd.AddCommand(tagCmd)
}
