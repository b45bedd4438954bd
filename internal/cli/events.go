package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"heystack-be/pkg/events"
	pktNats "heystack-be/pkg/nats"

	"github.com/spf13/cobra"
)

func newEventsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Work with turn events mirrored to NATS",
	}

	var durable string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print chat turn events from NATS JetStream until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			if cfg.Events.NatsURL == "" {
				return errors.New("NATS_URL is not set")
			}

			sub, err := pktNats.NewSubscriber(cfg.Events.NatsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			return sub.Subscribe(ctx, events.TypeChatTurnProcessed, durable, func(_ context.Context, e events.Event) error {
				b, err := json.Marshal(e.Payload())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			})
		},
	}
	tail.Flags().StringVar(&durable, "durable", "chat-cli-tail", "Durable consumer name")

	cmd.AddCommand(tail)
	return cmd
}
