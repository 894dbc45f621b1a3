package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/abhisek/intellistudy/internal/config"
	"github.com/abhisek/intellistudy/internal/planstore"
	"github.com/abhisek/intellistudy/internal/store"
)

var (
	cfg    *config.Config
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "intellistudy",
	Short: "Study plans with an AI tutor in the terminal",
	Long: "IntelliStudy turns your notes into a day-by-day study plan, tracks what you have\n" +
		"finished and lets you ask an AI tutor about the topic you are on.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runStudy,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides INTELLISTUDY_DB env var)")
	rootCmd.PersistentFlags().String("backend-url", "", "Plan service and assistant base URL (overrides INTELLISTUDY_BACKEND_URL)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional .env file to load")

	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(structureCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(gotoCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads .env and the environment once, then applies flag
// overrides. Logging goes to stderr until a command redirects it.
func loadConfig(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	c, err := config.Load()
	if err != nil {
		return err
	}
	if u, _ := cmd.Flags().GetString("backend-url"); u != "" {
		c.BackendURL = strings.TrimRight(u, "/")
		if err := c.Validate(); err != nil {
			return err
		}
	}
	cfg = c

	logger = newLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	return nil
}

// newLogger returns a text logger for terminals and a JSON logger for
// everything else.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(interface{ Fd() uintptr }); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then INTELLISTUDY_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// env is the local state most commands work on.
type env struct {
	dbPath string
	store  *store.Store
	plans  *planstore.Store
}

func openEnv(cmd *cobra.Command) (*env, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &env{
		dbPath: dbPath,
		store:  st,
		plans:  planstore.New(cmd.Context(), st.KVRepo(), logger),
	}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}
