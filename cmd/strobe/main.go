package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "strobe",
	Short: "Batch audio feature extraction",
	Long: "Strobe runs configured descriptor sets over pre-decoded audio\n" +
		"and writes the resulting descriptor pool as YAML.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(algorithmsCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
