package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "appgen",
	Short: "Generate single-file web apps from a description",
	Long: `appgen sends an app description to a chat-completion backend, repairs the
returned HTML into a complete document and lets you refine it with
free-text feedback. Run "appgen serve" for the browser UI.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "appgen.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable info logs")
}
