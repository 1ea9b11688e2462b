package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/when/internal/config"
	"github.com/papapumpkin/when/internal/telemetry"
	"github.com/papapumpkin/when/internal/watcher"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry [file]",
	Short: "View JSONL telemetry events written by serve",
	Long: `Reads and formats the JSONL telemetry file written by "when serve".

Without a file argument, uses server.telemetry_path from the configuration.
With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")

	path, err := telemetryPath(args)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	lr := &lineReader{r: bufio.NewReader(f)}
	if err := lr.drain(cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}
	if !follow {
		return nil
	}
	return tailFollow(cmd, lr, path)
}

func telemetryPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if cfg.Server.TelemetryPath == "" {
		return "", errors.New("telemetry: no file given and server.telemetry_path is not set")
	}
	return cfg.Server.TelemetryPath, nil
}

// tailFollow prints new events as the file grows, until interrupted.
func tailFollow(cmd *cobra.Command, lr *lineReader, path string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	w, err := watcher.New(path, watcher.WithDebounce(50*time.Millisecond))
	if err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if err := lr.drain(cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("telemetry: read %s: %w", path, err)
			}
		}
	}
}

// lineReader yields complete lines only. A trailing partial line is held
// until its newline arrives.
type lineReader struct {
	r       *bufio.Reader
	partial string
}

// drain prints every complete line currently available.
func (lr *lineReader) drain(w io.Writer) error {
	for {
		chunk, err := lr.r.ReadString('\n')
		if errors.Is(err, io.EOF) {
			lr.partial += chunk
			return nil
		}
		if err != nil {
			return err
		}
		line := strings.TrimSpace(lr.partial + chunk)
		lr.partial = ""
		if line != "" {
			printEvent(w, line)
		}
	}
}

// printEvent decodes a JSONL line and prints a human-readable representation.
func printEvent(w io.Writer, line string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}

	ts := evt.Timestamp.Format(time.TimeOnly)
	parts := []string{fmt.Sprintf("[%s]", ts), evt.Kind}

	if evt.RequestID != "" {
		parts = append(parts, fmt.Sprintf("request=%s", evt.RequestID))
	}
	if evt.Input != "" {
		parts = append(parts, fmt.Sprintf("input=%q", evt.Input))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
