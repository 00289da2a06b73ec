// cmd/routerchat/list_remote.go
package routerchat

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mwiater/routerchat/internal/logging"
	"github.com/mwiater/routerchat/internal/openrouter"
)

var remoteFilter string

// listRemoteCmd implements 'list remote', which queries the provider's live
// model catalogue.
var listRemoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "List models from the provider's live catalogue",
	Long:  `The 'remote' subcommand fetches the OpenRouter model catalogue and prints each model's ID, context length and per-million-token prices. Use --filter to show only free or only paid models.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := openrouter.New(cfg, openrouter.WithLogger(logging.New(cmd.ErrOrStderr(), cfg.Debug)))
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		all, err := client.ListModels(ctx)
		if err != nil {
			return err
		}
		shown, err := openrouter.FilterModels(all, remoteFilter)
		if err != nil {
			return err
		}
		printRemoteModels(cmd.OutOrStdout(), shown)
		return nil
	},
}

func init() {
	listCmd.AddCommand(listRemoteCmd)
	listRemoteCmd.Flags().StringVar(&remoteFilter, "filter", openrouter.FilterFree, "which models to show: free, paid or all")
}

// printRemoteModels writes one padded row per model.
func printRemoteModels(w io.Writer, list []openrouter.RemoteModel) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No models matched.")
		return
	}
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true)
	free := r.NewStyle().Foreground(lipgloss.Color("10"))

	idWidth := len("MODEL")
	for _, m := range list {
		idWidth = max(idWidth, len(m.ID))
	}

	fmt.Fprintln(w, header.Render(fmt.Sprintf("%-*s  %10s  %14s  %14s", idWidth, "MODEL", "CONTEXT", "PROMPT $/M", "COMPLETION $/M")))
	for _, m := range list {
		row := fmt.Sprintf("%-*s  %10d  %14s  %14s", idWidth, m.ID, m.ContextLength, perMillion(m.Pricing.Prompt), perMillion(m.Pricing.Completion))
		if m.Free() {
			row = free.Render(row)
		}
		fmt.Fprintln(w, row)
	}
	fmt.Fprintf(w, "\n%d models\n", len(list))
}

func perMillion(p openrouter.Price) string {
	if p == 0 {
		return "free"
	}
	return fmt.Sprintf("%.4f", float64(p)*1_000_000)
}
