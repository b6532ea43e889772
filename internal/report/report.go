// Package report renders the results of a cleaning run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// Summary is the outcome of one cleaning run.
type Summary struct {
	RunID      string `json:"run_id" yaml:"run_id"`
	Path       string `json:"path" yaml:"path"`
	Mode       string `json:"mode" yaml:"mode"`
	Window     string `json:"window" yaml:"window"`
	DryRun     bool   `json:"dry_run" yaml:"dry_run"`
	LinesRead  int    `json:"lines_read" yaml:"lines_read"`
	Kept       int    `json:"kept" yaml:"kept"`
	Deleted    int    `json:"deleted" yaml:"deleted"`
	BackupPath string `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	Duration   string `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Deletion is one entry removed by the run (or slated for removal on a
// dry run). Text is the entry's raw lines.
type Deletion struct {
	EndLine int    `json:"end_line" yaml:"end_line"`
	Text    string `json:"text" yaml:"text"`
}

// Formats lists the supported output formats.
func Formats() []string {
	return []string{"table", "plain", "json", "yaml"}
}

// ValidFormat reports whether format names a supported output format.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case "", "table", "plain", "json", "yaml":
		return true
	}
	return false
}

// WriteSummary writes s to w in the requested format.
func WriteSummary(w io.Writer, s Summary, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeSummaryTable(w, s)
	case "plain":
		return writeSummaryPlain(w, s)
	case "json":
		return writeJSON(w, s)
	case "yaml":
		return writeYAML(w, s)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteDeletions writes the removed entries to w in the requested
// format. Plain output mirrors the classic dry-run block listing.
func WriteDeletions(w io.Writer, items []Deletion, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeDeletionsTable(w, items)
	case "plain":
		return writeDeletionsPlain(w, items)
	case "json":
		return writeJSON(w, items)
	case "yaml":
		return writeYAML(w, items)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeSummaryTable(w io.Writer, s Summary) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, WidthMax: 80},
	})

	tw.AppendRow(table.Row{"run", s.RunID})
	tw.AppendRow(table.Row{"file", s.Path})
	tw.AppendRow(table.Row{"mode", s.Mode})
	tw.AppendRow(table.Row{"window", s.Window})
	tw.AppendRow(table.Row{"dry run", s.DryRun})
	tw.AppendRow(table.Row{"lines read", s.LinesRead})
	tw.AppendRow(table.Row{"entries kept", s.Kept})
	tw.AppendRow(table.Row{"entries deleted", s.Deleted})
	if s.BackupPath != "" {
		tw.AppendRow(table.Row{"backup", s.BackupPath})
	}
	if s.Duration != "" {
		tw.AppendRow(table.Row{"duration", s.Duration})
	}

	_ = tw.Render()
	return nil
}

func writeSummaryPlain(w io.Writer, s Summary) error {
	rows := [][2]string{
		{"run_id", s.RunID},
		{"path", s.Path},
		{"mode", s.Mode},
		{"window", s.Window},
		{"dry_run", strconv.FormatBool(s.DryRun)},
		{"lines_read", strconv.Itoa(s.LinesRead)},
		{"kept", strconv.Itoa(s.Kept)},
		{"deleted", strconv.Itoa(s.Deleted)},
	}
	if s.BackupPath != "" {
		rows = append(rows, [2]string{"backup", s.BackupPath})
	}
	if s.Duration != "" {
		rows = append(rows, [2]string{"duration", s.Duration})
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return nil
}

func writeDeletionsTable(w io.Writer, items []Deletion) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = true
	tw.Style().Options.SeparateHeader = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 100},
	})

	tw.AppendHeader(table.Row{"Line", "Entry"})
	for _, d := range items {
		tw.AppendRow(table.Row{d.EndLine, escapeNewlines(strings.TrimSuffix(d.Text, "\n"))})
	}
	if len(items) == 0 {
		tw.AppendRow(table.Row{"-", "(no deletions)"})
	}

	_ = tw.Render()
	return nil
}

func writeDeletionsPlain(w io.Writer, items []Deletion) error {
	for _, d := range items {
		if _, err := fmt.Fprintf(w, "--- would delete (entry ending line %d) ---\n%s---\n",
			d.EndLine, d.Text); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func escapeNewlines(text string) string {
	return strings.ReplaceAll(text, "\n", "\\n")
}
