// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperdrop/pkg/types"
)

// WriteYAML writes runs as a YAML list.
func WriteYAML(w io.Writer, runs []types.RunRecord) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// WriteJSON writes runs as an indented JSON array.
func WriteJSON(w io.Writer, runs []types.RunRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

// WriteTable writes one line per run for terminal display.
func WriteTable(w io.Writer, runs []types.RunRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tID\tSTATUS\tSTAGE\tTITLE")
	for _, r := range runs {
		status := string(r.Status)
		if r.Status == types.RunFailed && r.Error != "" {
			status += " (" + r.Error + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.FinishedAt.Local().Format("2006-01-02 15:04"),
			r.ShortID, status, r.Stage, r.Title)
	}
	return tw.Flush()
}
