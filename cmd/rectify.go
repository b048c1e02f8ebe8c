package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ai_app_generator/generator"
)

var (
	rectifyFile   string
	rectifyOutput string
)

var rectifyCmd = &cobra.Command{
	Use:   "rectify <feedback>",
	Short: "Refine an existing HTML app with feedback",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(rectifyFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rectifyFile, err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		agent, err := buildAgent(cfg)
		if err != nil {
			return fmt.Errorf("creating generator: %w", err)
		}
		sess := newCLISession(agent)
		if _, err := sess.Restore(string(data)); err != nil {
			return err
		}

		var doc generator.Document
		err = withSpinner("Improving app", func() error {
			ctx, cancel := callContext(cmd.Context(), cfg)
			defer cancel()
			doc, err = sess.Rectify(ctx, strings.Join(args, " "))
			return err
		})
		if err != nil {
			return err
		}
		return writeDocument(rectifyOutput, doc)
	},
}

func init() {
	rectifyCmd.Flags().StringVarP(&rectifyFile, "file", "f", "", "HTML file to refine")
	rectifyCmd.Flags().StringVarP(&rectifyOutput, "output", "o", "", "write the result to this file instead of stdout")
	_ = rectifyCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(rectifyCmd)
}
