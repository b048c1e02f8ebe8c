package cmd

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"ai_app_generator/config"
)

var (
	initForce    bool
	initProvider string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
		}

		provider := config.Provider(initProvider)
		if provider == "" {
			sel := promptui.Select{
				Label: "Select LLM provider",
				Items: []string{
					string(config.ProviderFoundry),
					string(config.ProviderOpenAI),
					string(config.ProviderDeepSeek),
					string(config.ProviderMock),
				},
			}
			_, choice, err := sel.Run()
			if err != nil {
				return fmt.Errorf("provider selection: %w", err)
			}
			provider = config.Provider(choice)
		}

		cfg := config.DefaultConfig()
		cfg.LLM.Provider = provider
		if err := cfg.Save(cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (provider %s)\n", cfgFile, provider)
		if provider == config.ProviderOpenAI || provider == config.ProviderDeepSeek {
			fmt.Fprintln(cmd.OutOrStdout(), "Set llm.api_key or APPGEN_LLM__API_KEY before generating.")
		}
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	initCmd.Flags().StringVar(&initProvider, "provider", "", "LLM provider (skips the prompt)")
	rootCmd.AddCommand(initCmd)
}
