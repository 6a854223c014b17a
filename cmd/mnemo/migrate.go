package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()
		return a.db.Migrate(a.cfg.MigrationsPath, a.log)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
