// Package output renders fusion results for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mistward/paperfuse/pkg/models"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Render writes the result in the requested format. An empty format means
// table.
func Render(w io.Writer, result *models.FusedResult, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatTable, "":
		return renderTable(w, result)
	default:
		return fmt.Errorf("invalid output format %q: must be table or json", format)
	}
}

func renderJSON(w io.Writer, result *models.FusedResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func renderTable(w io.Writer, result *models.FusedResult) error {
	fmt.Fprintf(w, "Pass %s, generated %s\n\n",
		result.PassID, result.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	if len(result.Items) == 0 {
		fmt.Fprintln(w, "No recommendations today.")
		printDegraded(w, result.Degraded)
		return nil
	}

	rows := make([][]string, 0, len(result.Items))
	for _, item := range result.Items {
		rows = append(rows, []string{
			strconv.Itoa(item.Position),
			fmt.Sprintf("%.4f", item.Score),
			displayTitle(item),
			signalList(item.Contributions),
		})
	}

	table := newTable(w, []string{"pos", "score", "paper", "signals"})
	table.Bulk(rows)
	table.Render()

	printDegraded(w, result.Degraded)
	return nil
}

func displayTitle(item models.FusedItem) string {
	if item.Candidate != nil && item.Candidate.Title != "" {
		return item.Candidate.Title
	}
	return item.Ref.Key()
}

func signalList(contributions []models.Contribution) string {
	if len(contributions) == 0 {
		return "-"
	}
	names := make([]string, 0, len(contributions))
	for _, c := range contributions {
		names = append(names, c.Strategy)
	}
	return strings.Join(names, ", ")
}

func printDegraded(w io.Writer, degraded []string) {
	if len(degraded) == 0 {
		return
	}
	fmt.Fprintf(w, "\nDegraded strategies: %s\n", strings.Join(degraded, ", "))
}

func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	table.Header(headers)
	return table
}
