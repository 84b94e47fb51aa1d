package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/dusage/internal/dusage"
)

func logic(options dusage.Options, out io.Writer) error {
	// Progress would interleave with the streaming report, so it is
	// only offered in summarize mode, where stdout stays quiet until
	// the walk completes.
	enableProgress := options.Summarize &&
		strings.ToLower(options.Output) != "json" &&
		!options.Debug &&
		isatty.IsTerminal(os.Stderr.Fd())

	ctx := context.Background()

	// Simple progress callback that prints directly to stderr
	var progressHook func(entries, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(os.Stderr, "\033[?25l")
		defer fmt.Fprint(os.Stderr, "\033[?25h")

		progressHook = func(entries, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d entries, %s",
				entries, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(os.Stderr, "\r\033[2K%s\r", msg)
		}
	}

	buffered := bufio.NewWriter(out)

	var (
		emit    func(dusage.Record)
		records []dusage.Record
	)

	switch strings.ToLower(options.Output) {
	case "json":
		emit = func(record dusage.Record) { records = append(records, record) }
	default:
		// Write errors stick in the buffered writer and surface at
		// Flush below.
		emit = func(record dusage.Record) { _ = PrintRecord(record, buffered) }
	}

	report, err := dusage.Run(ctx, options, emit, progressHook)

	// Records already streamed must survive a failed run.
	flushErr := buffered.Flush()

	// Clear the status line
	if enableProgress {
		fmt.Fprint(os.Stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	if flushErr != nil {
		return flushErr
	}

	if strings.ToLower(options.Output) == "json" {
		return PrintJSON(options.Path, report, records, out)
	}

	return nil
}
