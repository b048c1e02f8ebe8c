package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ai_app_generator/generator"
	"ai_app_generator/publisher"
)

var (
	deployFile        string
	deployDescription string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy an HTML app to the configured GitHub repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(deployFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", deployFile, err)
		}
		code, err := generator.Validate(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", deployFile, err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pub, err := buildPublisher(cfg)
		if err != nil {
			return err
		}
		if pub == nil {
			return errors.New("GitHub deployment is not configured; set github.token, github.username and github.repo")
		}

		var dep publisher.Deployment
		err = withSpinner("Deploying to GitHub", func() error {
			dep, err = pub.PublishDocument(cmd.Context(), publisher.PublishParams{
				HTML:        code,
				Description: deployDescription,
				Title:       generator.ExtractTitle(code),
			})
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deployed %s\nRepository: %s\nPages: %s\n", dep.Path, dep.RepoURL, dep.PagesURL)
		return nil
	},
}

func init() {
	deployCmd.Flags().StringVarP(&deployFile, "file", "f", "", "HTML file to deploy")
	deployCmd.Flags().StringVarP(&deployDescription, "description", "d", "", "app description used for the file name")
	_ = deployCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(deployCmd)
}
