package main

import (
	"os"

	"github.com/spf13/cobra"

	"minic/internal/passes"
)

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List registered optimization passes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		passes.RegisterAllPasses()
		pm := passes.NewPassManager(optLevel(cmd, cfg))
		pm.Disabled = disabledSet(cfg)
		pm.ShowInfo(os.Stdout)
		return nil
	},
}
