package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/intellistudy/internal/app"
	"github.com/abhisek/intellistudy/internal/chat"
	"github.com/abhisek/intellistudy/internal/session"
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Open the study session (default)",
	RunE:  runStudy,
}

// runStudy opens the store, builds the session and launches the TUI.
func runStudy(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}

	// Log lines would corrupt the screen, so the TUI logs to a file.
	logPath := filepath.Join(filepath.Dir(dbPath), "intellistudy.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger = newLogger(logFile, cfg.LogLevel)
	slog.SetDefault(logger)

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := newSession(cmd, e)
	if err != nil {
		return err
	}
	logger.Info("starting study session", "db", e.dbPath, "backend", cfg.BackendURL, "has_plan", sess.HasPlan())
	return app.Run(ctx, sess, logger)
}

// newSession builds a study session over e with a chat bound to the
// configured backend.
func newSession(cmd *cobra.Command, e *env, opts ...chat.Option) (*session.Session, error) {
	opts = append([]chat.Option{chat.WithLogger(logger)}, opts...)
	c := chat.New(chat.NewHTTPTransport(cfg.BackendURL, nil), opts...)
	return session.New(cmd.Context(), session.Deps{
		Plans:       e.plans,
		Completions: e.store.CompletionRepo(),
		Chat:        c,
		Logger:      logger,
	})
}
