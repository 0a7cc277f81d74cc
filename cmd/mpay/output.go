package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// render writes a listing in the format selected by --format. jsonValue is
// the structured form used for json output.
func render(headers []string, rows [][]string, jsonValue any) error {
	switch format {
	case "table":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		printRow(w, headers)
		for _, row := range rows {
			printRow(w, row)
		}
		return w.Flush()
	case "csv":
		w := csv.NewWriter(os.Stdout)
		if err := w.Write(headers); err != nil {
			return err
		}
		if err := w.WriteAll(rows); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonValue)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printRow(w *tabwriter.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
