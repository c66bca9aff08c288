package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/maloquacious/datacycle/internal/config"
	"github.com/maloquacious/datacycle/internal/display"
	"github.com/maloquacious/datacycle/internal/logger"
	"github.com/spf13/cobra"
)

func newClientCommand() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Cycle through server records; press Enter to advance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd, wait)
		},
	}
	cmd.Flags().String("server", config.DefaultServerURL, "base URL of the datacycle server")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the initial fetch before reading input")
	return cmd
}

// runClient mounts a display against the server and treats each input line
// as one click. It returns when input ends.
func runClient(cmd *cobra.Command, wait bool) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	out := cmd.OutOrStdout()

	d := display.New(display.NewHTTPFetcher(cfg.Client.Server), log)
	defer d.Unmount()

	done := d.Mount(ctx)
	if wait {
		select {
		case <-done:
			reportFetch(out, d, log)
		case <-ctx.Done():
			return ctx.Err()
		}
		done = nil
	}
	outln(out, d.Text())

	lines := readLines(ctx, cmd.InOrStdin())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-done:
			if ok {
				reportFetch(out, d, log)
			}
			done = nil
		case _, ok := <-lines:
			if !ok {
				return nil
			}
			outln(out, d.Click())
		}
	}
}

// reportFetch notes a successful load on w. Failures go to the log only.
func reportFetch(w io.Writer, d *display.Display, log logger.Logger) {
	n := len(d.Snapshot().Records)
	if d.Phase() == display.PhaseFailed {
		log.Warn("%s, showing %d fallback records", d.Phase(), n)
		return
	}
	outln(w, fmt.Sprintf("(loaded %d records)", n))
}

// readLines signals once per input line. The scanner goroutine exits when
// input ends or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
