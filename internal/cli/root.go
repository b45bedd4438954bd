// Package cli implements the chat command line: a local REPL against the
// dialogue engine plus tools to inspect and move persisted sessions.
package cli

import (
	"context"
	"fmt"

	"heystack-be/internal/bootstrap"
	"heystack-be/internal/config"
	"heystack-be/internal/pkg/logger"
	"heystack-be/internal/repository"
	"heystack-be/internal/service"
	"heystack-be/pkg/dialogue/content"
	"heystack-be/pkg/dialogue/engine"

	"github.com/spf13/cobra"
)

type options struct {
	backend     string
	sessionFile string
	sqlitePath  string
	sender      string
}

// NewRootCmd builds the command tree. Flags override the matching
// environment settings read by config.Load.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "chat",
		Short:         "Talk to Al-Atrash and manage its sessions",
		Long:          "Local tools for the oud chatbot: an interactive REPL on the same engine and session store as the server, session inspection and migration, and transcript viewing.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.backend, "backend", "b", "", "Session backend: file, sqlite, redis, postgres or memory (default: $SESSION_BACKEND)")
	root.PersistentFlags().StringVar(&opts.sessionFile, "session-file", "", "Session file for the file backend (default: $SESSION_FILE_PATH)")
	root.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite", "", "Database path for the sqlite backend (default: $SQLITE_PATH)")

	root.AddCommand(
		newReplCmd(opts),
		newSessionsCmd(opts),
		newTranscriptCmd(opts),
		newSimulateCmd(),
		newEventsCmd(opts),
	)
	return root
}

func (o *options) config() *config.Config {
	cfg := config.Load()
	if o.backend != "" {
		cfg.Session.Backend = o.backend
	}
	if o.sessionFile != "" {
		cfg.Session.FilePath = o.sessionFile
	}
	if o.sqlitePath != "" {
		cfg.Session.SQLitePath = o.sqlitePath
	}
	return cfg
}

// openStore opens the configured session store. CLI logs go to the log
// file only, keeping the terminal for the conversation.
func openStore(ctx context.Context, cfg *config.Config) (repository.SessionStore, logger.ILogger, error) {
	log := logger.NewIsolatedLogger(cfg.App.LogFilePath)

	backend, _, err := bootstrap.OpenSessionBackend(ctx, cfg.Session)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s session backend: %w", cfg.Session.Backend, err)
	}
	st, err := repository.NewSessionStore(ctx, backend, log)
	if err != nil {
		_ = backend.Close()
		return nil, nil, err
	}
	return st, log, nil
}

func openChat(ctx context.Context, cfg *config.Config) (service.IChatService, repository.SessionStore, error) {
	catalog, err := content.Load(cfg.Content.Path, cfg.Content.KnowledgePath)
	if err != nil {
		return nil, nil, fmt.Errorf("load content: %w", err)
	}

	st, log, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return service.NewChatService(engine.New(catalog), st, nil, log), st, nil
}
