// cmd/routerchat/history.go
package routerchat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mwiater/routerchat/internal/sessionlog"
)

var (
	historyLimit  int
	historyFormat string
)

var errUnknownFormat = errors.New("format must be table, json or yaml")

// historyCmd prints records from the conversation log.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show logged conversations",
	Long:  `The 'history' command reads the conversation log and prints the most recent exchanges as a table, as JSON Lines or as YAML. Lines that are not valid records are skipped and counted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := sessionlog.Read(cfg.LogFile)
		if err != nil {
			return err
		}
		records := sessionlog.Tail(res.Records, historyLimit)
		if err := printHistory(cmd.OutOrStdout(), records, historyFormat); err != nil {
			return err
		}
		if res.Skipped > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ skipped %d malformed line(s) in %s\n", res.Skipped, cfg.LogFile)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of most recent records to show (0 for all)")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "table", "output format: table, json or yaml")
}

func printHistory(w io.Writer, records []sessionlog.Record, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		printHistoryTable(w, records)
		return nil
	default:
		return fmt.Errorf("%w, got %q", errUnknownFormat, format)
	}
}

func printHistoryTable(w io.Writer, records []sessionlog.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No conversations logged yet.")
		return
	}
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true)
	failed := r.NewStyle().Foreground(lipgloss.Color("9"))

	const layout = "%-26s  %-32s  %6s  %-30s  %s"
	fmt.Fprintln(w, header.Render(fmt.Sprintf(layout, "TIMESTAMP", "MODEL", "STATUS", "QUESTION", "RESPONSE")))
	for _, rec := range records {
		row := fmt.Sprintf(layout,
			rec.Timestamp,
			truncate(rec.ModelName, 32),
			fmt.Sprint(rec.StatusCode),
			truncate(rec.Question, 30),
			truncate(rec.Response, 50),
		)
		if rec.StatusCode != 200 {
			row = failed.Render(row)
		}
		fmt.Fprintln(w, row)
	}
}

// truncate flattens s to one line and cuts it to n runes.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
