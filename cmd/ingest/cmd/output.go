package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/openctemio/scanhistory/internal/app/ingest"
)

// Output format constants.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case "", outputTable, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

func printOutput(w io.Writer, format string, out *ingest.Output) error {
	switch format {
	case outputJSON:
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case outputYAML:
		data, err := yaml.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return printTable(w, out)
	}
}

func printTable(w io.Writer, out *ingest.Output) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"SOURCE", out.Source},
		{"LINES READ", strconv.Itoa(out.LinesRead)},
		{"INSERTED", strconv.Itoa(out.FindingsInserted)},
		{"PARSE ERRORS", strconv.Itoa(out.ParseErrors)},
		{"WRITE ERRORS", strconv.Itoa(out.WriteErrors)},
		{"SKIPPED", strconv.Itoa(out.LinesSkipped)},
		{"DURATION", out.Duration.String()},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	if len(out.FailedLines) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "LINE\tKIND\tERROR")
		for _, f := range out.FailedLines {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", f.Line, f.Kind, truncate(f.Error, 100))
		}
	}
	return tw.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
