package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minic/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the minic version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("minic %s\n", version.Version)
	},
}
