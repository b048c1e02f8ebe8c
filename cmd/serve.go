package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ai_app_generator/generator"
	"ai_app_generator/history"
	"ai_app_generator/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		agent, err := buildAgent(cfg)
		if err != nil {
			return fmt.Errorf("creating generator: %w", err)
		}

		srvCfg := server.Config{
			Policy:          generator.Policy(cfg.Concurrency),
			LLMTimeout:      cfg.LLM.Timeout,
			RateLimit:       cfg.RateLimit.PerMinute,
			RateBurst:       cfg.RateLimit.Burst,
			AllowAllOrigins: cfg.AllowAllOrigins,
			TrustProxy:      cfg.TrustProxy,
			SessionTTL:      cfg.SessionTTL,
			Verbose:         cfg.Verbose,
			Logger:          log.Default(),
		}

		if cfg.History.Path != "" {
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("opening history: %w", err)
			}
			defer store.Close()
			srvCfg.History = store
		}

		pub, err := buildPublisher(cfg)
		if err != nil {
			return fmt.Errorf("creating publisher: %w", err)
		}
		if pub != nil {
			srvCfg.Deployer = pub
		}

		srv, err := server.New(agent, srvCfg)
		if err != nil {
			return err
		}

		listen := cfg.ServerAddr
		if serveAddr != "" {
			listen = serveAddr
		}
		if listen == "" {
			listen = ":8080"
		}
		httpServer := &http.Server{
			Addr:              listen,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Printf("Starting web server on %s (provider=%s, concurrency=%s)", listen, cfg.LLM.Provider, cfg.Concurrency)
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server_addr)")
	rootCmd.AddCommand(serveCmd)
}
