package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"heystack-be/internal/dto"
	"heystack-be/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	botColor   = color.New(color.FgCyan)
	mediaColor = color.New(color.FgHiBlack)
	userColor  = color.New(color.FgYellow, color.Bold)
)

func newReplCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Chat with Al-Atrash in the terminal",
		Long:  "Starts a conversation as --sender. Only the --sender session is written back, so the REPL can share a backend with a running server without touching its senders. Type :quit to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			svc, st, err := openChat(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			return runRepl(cmd.Context(), svc, opts.sender, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.sender, "sender", "s", "cli", "Sender id of this conversation")
	return cmd
}

// runRepl opens with an empty message, as chat widgets do, then runs one turn
// per input line
func runRepl(ctx context.Context, svc service.IChatService, sender string, in io.Reader, out io.Writer) error {
	if err := turn(ctx, svc, sender, "", out); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		userColor.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case ":quit", ":q", ":exit":
			return nil
		case "":
			continue
		}
		if err := turn(ctx, svc, sender, line, out); err != nil {
			return err
		}
	}
}

func turn(ctx context.Context, svc service.IChatService, sender, message string, out io.Writer) error {
	res, err := svc.SendChat(ctx, &dto.ChatRequest{Sender: sender, Message: message})
	if err != nil {
		return err
	}
	for _, r := range res.Responses {
		if strings.HasPrefix(r, "<") {
			mediaColor.Fprintln(out, "  "+r)
			continue
		}
		botColor.Fprintln(out, "al-atrash> "+r)
	}
	return nil
}
