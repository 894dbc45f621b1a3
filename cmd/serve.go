package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/intellistudy/internal/assistant"
	"github.com/abhisek/intellistudy/internal/llm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the AI tutor backend",
	Long: `Serve the chat route the study session talks to. The LLM provider is
taken from INTELLISTUDY_LLM_PROVIDER and its key, or from the first vendor
API key found (OPENROUTER_API_KEY, ANTHROPIC_API_KEY, OPENAI_API_KEY,
GEMINI_API_KEY). Without one the server still starts and answers 503.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides INTELLISTUDY_ADDR)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	addr := cfg.Addr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	var provider llm.Provider
	llmCfg, ok := llm.ResolveConfig()
	if ok {
		provider, err = llm.NewProvider(ctx, llmCfg, e.store.EventRepo(), logger)
		if err != nil {
			return fmt.Errorf("create LLM provider: %w", err)
		}
		logger.Info("LLM provider configured", "provider", llmCfg.Provider, "model", provider.ModelID())
	} else {
		logger.Warn("no LLM provider configured; chat requests will fail with 503")
	}

	svc := assistant.NewService(provider, assistant.WithLogger(logger), assistant.WithTimeout(llmCfg.Timeout))
	r := assistant.NewRouter(assistant.NewHandler(svc, logger))

	// Streams can run long, so there is no write timeout.
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
