package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"ai_app_generator/config"
	"ai_app_generator/generator"
	"ai_app_generator/publisher"
)

// loadConfig loads and validates the config. --verbose wins over the file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `appgen init` to create a config file", err)
	}
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func infof(cfg *config.Config, format string, args ...interface{}) {
	if !cfg.Verbose {
		return
	}
	log.Printf("[INFO] "+format, args...)
}

func buildLLM(cfg *config.Config) (generator.LLMClient, error) {
	settings := cfg.Settings()
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return generator.NewOpenAILLMFromConfig(settings)
	case config.ProviderDeepSeek:
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if settings.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case config.ProviderFoundry:
		return generator.NewCompatLLM(settings, &http.Client{Timeout: cfg.LLM.Timeout})
	case config.ProviderMock:
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

func buildAgent(cfg *config.Config) (*generator.Agent, error) {
	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(llm, cfg.EndpointMap(),
		generator.WithModel(cfg.LLM.Model),
		generator.WithTemperatures(cfg.LLM.Temperature, cfg.LLM.RectifyTemperature),
	)
}

// buildPublisher returns nil when GitHub deployment is not configured.
func buildPublisher(cfg *config.Config) (*publisher.Publisher, error) {
	if !cfg.GitHub.Enabled() {
		return nil, nil
	}
	return publisher.New(publisher.Config{
		Token:        cfg.GitHub.Token,
		Username:     cfg.GitHub.Username,
		Repo:         cfg.GitHub.Repo,
		Branch:       cfg.GitHub.Branch,
		PagesBaseURL: cfg.GitHub.PagesBase(),
		APIBaseURL:   cfg.GitHub.APIBaseURL,
	}, nil, cfg.Verbose, log.Default())
}

// newCLISession binds a session to stderr notices.
func newCLISession(agent *generator.Agent) *generator.Session {
	return generator.NewSession("cli", agent, generator.WithNotifier(generator.NotifierFunc(func(e generator.Event) {
		if e.Kind == generator.EventNotice {
			fmt.Fprintln(os.Stderr, e.Message)
		}
	})))
}

func callContext(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.LLM.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.LLM.Timeout)
}

// withSpinner shows an indeterminate spinner on stderr while fn runs.
func withSpinner(description string, fn func() error) error {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		fmt.Fprintln(os.Stderr, description)
		return fn()
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()
	err := fn()
	close(done)
	_ = bar.Finish()
	return err
}

// writeDocument writes to path, or to stdout when path is empty.
func writeDocument(path string, doc generator.Document) error {
	if path == "" {
		_, err := fmt.Fprintln(os.Stdout, doc.HTML)
		return err
	}
	if err := os.WriteFile(path, []byte(doc.HTML+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	title := doc.Title
	if title == "" {
		title = "untitled"
	}
	fmt.Fprintf(os.Stderr, "Saved v%d (%s) to %s\n", doc.Version, title, path)
	return nil
}
