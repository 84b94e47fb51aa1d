package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/idelchi/dusage/internal/dusage"
)

// jsonReport is the document emitted by --output json.
type jsonReport struct {
	// Root is the path exactly as given on the command line.
	Root string `json:"root"`
	// TotalKB is the root's accounted usage in kilobytes.
	TotalKB int64 `json:"total_kb"`
	// Entries is the number of accounted entries.
	Entries int64 `json:"entries"`
	// Elapsed is the total traversal time.
	Elapsed time.Duration `json:"elapsed"`
	// Records lists the usage records in traversal order.
	Records []dusage.Record `json:"records"`
}

// PrintRecord writes a single usage record as a tab-separated line.
func PrintRecord(record dusage.Record, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "%d\t%s\n", record.UsageKB, record.Path); err != nil {
		return err
	}

	return nil
}

// PrintJSON outputs the collected run as one JSON document.
func PrintJSON(root string, report *dusage.Report, records []dusage.Record, writer io.Writer) error {
	doc := jsonReport{
		Root:    root,
		TotalKB: report.TotalKB,
		Entries: report.Entries,
		Elapsed: report.Elapsed,
		Records: records,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}
