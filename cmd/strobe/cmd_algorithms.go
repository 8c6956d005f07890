package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strobe-audio/strobe"
	"github.com/strobe-audio/strobe/algorithms"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the builtin algorithm catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		factory := strobe.NewFactory()
		if err := algorithms.RegisterAll(factory); err != nil {
			return err
		}
		for _, name := range factory.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
