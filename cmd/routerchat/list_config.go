// cmd/routerchat/list_config.go
package routerchat

import (
	"github.com/spf13/cobra"
)

// listConfigCmd implements 'list config', which shows the resolved settings
// with the API key masked.
var listConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long:  `The 'config' subcommand resolves settings from flags, the environment and the dotenv file, and pretty-prints the result. The API key is masked except for its last four characters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dumpConfig(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func init() {
	listCmd.AddCommand(listConfigCmd)
}
