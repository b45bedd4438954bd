package cli

import (
	"fmt"

	"heystack-be/internal/pkg/logger"

	"github.com/spf13/cobra"
)

func newTranscriptCmd(opts *options) *cobra.Command {
	var limit int
	var sender string

	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Show the most recent recorded turns, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			entries, err := logger.ReadEntries(cfg.App.TranscriptLogPath, "", 0, 0)
			if err != nil {
				return err
			}

			shown := 0
			for _, e := range entries {
				if sender != "" && e.Details["sender"] != sender {
					continue
				}
				if limit > 0 && shown == limit {
					break
				}
				shown++
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %v: %q -> %v/%v (%v responses)\n",
					e.Timestamp, e.Details["sender"], e.Details["message"],
					e.Details["stage"], e.Details["handler"], e.Details["responses"])
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Max turns, 0 for all")
	cmd.Flags().StringVarP(&sender, "sender", "s", "", "Only turns of this sender")
	return cmd
}
