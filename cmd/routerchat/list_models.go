// cmd/routerchat/list_models.go
package routerchat

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/routerchat/models"
)

// listModelsCmd implements 'list models', which prints the built-in model
// menu without starting a session.
var listModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available for chat",
	Long:  `The 'models' subcommand prints the fixed menu of models that a chat session offers, in selection order.`,
	Run: func(cmd *cobra.Command, args []string) {
		models.RenderMenu(cmd.OutOrStdout())
	},
}

func init() {
	listCmd.AddCommand(listModelsCmd)
}
