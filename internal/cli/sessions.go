package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"heystack-be/internal/bootstrap"
	"heystack-be/internal/config"

	"github.com/spf13/cobra"
)

func newSessionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect persisted conversation contexts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List senders with a stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(cmd.Context(), opts.config())
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			for _, sender := range st.Senders() {
				sess, _ := st.Lookup(sender)
				name := sess.UserName
				if name == "" {
					name = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", sender, name, sess.LastIntent)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <sender>",
		Short: "Print the session of one sender as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(cmd.Context(), opts.config())
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			sess, ok := st.Lookup(args[0])
			if !ok {
				return fmt.Errorf("no session for sender %q", args[0])
			}
			b, _ := json.MarshalIndent(sess, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}

	var to, toPath string
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every session from the configured backend to another one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			target := cfg.Session
			target.Backend = to
			switch to {
			case config.BackendFile:
				if toPath != "" {
					target.FilePath = toPath
				}
			case config.BackendSQLite:
				if toPath != "" {
					target.SQLitePath = toPath
				}
			}
			if target == cfg.Session {
				return fmt.Errorf("source and target are the same %s backend", to)
			}
			n, err := migrateSessions(cmd.Context(), cfg.Session, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d sessions from %s to %s\n", n, cfg.Session.Backend, to)
			return nil
		},
	}
	migrate.Flags().StringVar(&to, "to", "", "Target backend")
	migrate.Flags().StringVar(&toPath, "to-path", "", "Target file or database path for the file and sqlite backends")
	_ = migrate.MarkFlagRequired("to")

	cmd.AddCommand(list, show, migrate)
	return cmd
}

func migrateSessions(ctx context.Context, from, to config.SessionConfig) (int, error) {
	src, _, err := bootstrap.OpenSessionBackend(ctx, from)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	sessions, err := src.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load source: %w", err)
	}

	dst, _, err := bootstrap.OpenSessionBackend(ctx, to)
	if err != nil {
		return 0, fmt.Errorf("open target: %w", err)
	}
	defer dst.Close()

	if err := dst.Save(ctx, sessions); err != nil {
		return 0, fmt.Errorf("save target: %w", err)
	}
	return len(sessions), nil
}
