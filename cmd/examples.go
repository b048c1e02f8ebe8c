package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ai_app_generator/generator"
)

var examplesCmd = &cobra.Command{
	Use:   "examples [name]",
	Short: "List the built-in example descriptions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			d, ok := generator.Examples[args[0]]
			if !ok {
				return fmt.Errorf("unknown example %q", args[0])
			}
			fmt.Fprintln(out, d)
			return nil
		}
		for _, name := range generator.ExampleNames() {
			fmt.Fprintf(out, "%-12s %s\n", name, generator.Examples[name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(examplesCmd)
}
