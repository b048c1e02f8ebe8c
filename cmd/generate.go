package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"ai_app_generator/config"
	"ai_app_generator/generator"
)

var (
	genOutput      string
	genExample     string
	genInteractive bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [description]",
	Short: "Generate an app from a description",
	Long: `Sends the description to the configured backend and prints the repaired
HTML document, or writes it to --output. With --interactive, keeps asking
for feedback and refines the app until an empty answer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		description := strings.Join(args, " ")
		if genExample != "" {
			d, ok := generator.Examples[genExample]
			if !ok {
				return fmt.Errorf("unknown example %q (see `appgen examples`)", genExample)
			}
			description = d
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

		output := genOutput
		if genInteractive && output == "" {
			output = "app.html"
		}

		var doc generator.Document
		err = withSpinner("Generating app", func() error {
			ctx, cancel := callContext(cmd.Context(), cfg)
			defer cancel()
			doc, err = sess.Generate(ctx, description)
			return err
		})
		if err != nil {
			return err
		}
		infof(cfg, "generated v%d title=%q bytes=%d", doc.Version, doc.Title, len(doc.HTML))
		if err := writeDocument(output, doc); err != nil {
			return err
		}

		if genInteractive {
			return rectifyLoop(cmd, cfg, sess, output)
		}
		return nil
	},
}

// rectifyLoop is the human-in-the-loop cycle: ask, refine, save, repeat.
func rectifyLoop(cmd *cobra.Command, cfg *config.Config, sess *generator.Session, output string) error {
	for {
		prompt := promptui.Prompt{
			Label: "What should change? (empty to finish)",
		}
		feedback, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading feedback: %w", err)
		}
		if strings.TrimSpace(feedback) == "" {
			return nil
		}

		var doc generator.Document
		err = withSpinner("Improving app", func() error {
			ctx, cancel := callContext(cmd.Context(), cfg)
			defer cancel()
			doc, err = sess.Rectify(ctx, feedback)
			return err
		})
		if err != nil {
			// The previous version stays current; let the user try again.
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if err := writeDocument(output, doc); err != nil {
			return err
		}
	}
}

func init() {
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "write the document to this file instead of stdout")
	generateCmd.Flags().StringVarP(&genExample, "example", "e", "", "use a built-in example description")
	generateCmd.Flags().BoolVarP(&genInteractive, "interactive", "i", false, "refine the app with feedback after generating")
	rootCmd.AddCommand(generateCmd)
}
