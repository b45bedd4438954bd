package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"heystack-be/internal/dto"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// A first visit that walks the main branches of the conversation
var defaultScript = []string{
	"",
	"my name is Layla",
	"understanding",
	"history",
	"who is farid",
	"tell me more about him",
	"show me a picture",
	"yes",
	"professional",
	"how to play",
	"tuning",
	"yes",
	"strokes",
	"more",
	"famous songs",
	"1",
	"thanks",
	"bye",
}

func newSimulateCmd() *cobra.Command {
	var baseURL, sender, scriptPath string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a scripted conversation against a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			script := defaultScript
			if scriptPath != "" {
				lines, err := readScript(scriptPath)
				if err != nil {
					return err
				}
				script = lines
			}
			if sender == "" {
				sender = "sim-" + uuid.NewString()[:8]
			}

			client := &http.Client{Timeout: timeout}
			out := cmd.OutOrStdout()
			color.New(color.FgCyan).Fprintf(out, "Simulating %d turns as %s against %s\n", len(script), sender, baseURL)

			for _, text := range script {
				userColor.Fprintf(out, "\nUSER: %q\n", text)

				start := time.Now()
				res, err := postChat(client, baseURL, &dto.ChatRequest{Sender: sender, Message: text})
				if err != nil {
					color.New(color.FgRed).Fprintf(out, "Error: %v\n", err)
					return err
				}
				for _, r := range res.Responses {
					botColor.Fprintln(out, "BOT: "+r)
				}
				mediaColor.Fprintf(out, "(%d responses in %s)\n", len(res.Responses), time.Since(start).Round(time.Millisecond))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8000", "Server base URL")
	cmd.Flags().StringVarP(&sender, "sender", "s", "", "Sender id (default: a fresh random one)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "File with one message per line; an empty line is the opening message")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Per request timeout")
	return cmd
}

func readScript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	return lines, scanner.Err()
}

func postChat(client *http.Client, baseURL string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	body, _ := json.Marshal(req)
	resp, err := client.Post(strings.TrimRight(baseURL, "/")+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var res dto.ChatResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return &res, nil
}
