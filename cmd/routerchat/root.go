// cmd/routerchat/root.go
package routerchat

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/routerchat/internal/config"
)

// envFile is the optional dotenv file read before the environment.
var envFile string

// rootCmd is the base Cobra command for routerchat. Running it with no
// subcommand starts a line-mode chat session.
var rootCmd = &cobra.Command{
	Use:   "routerchat",
	Short: "Chat with free OpenRouter models from the terminal",
	Long: `routerchat lets you pick one of a fixed set of OpenRouter models and ask it
questions, one at a time. Every exchange is appended to a JSON Lines log.
Running routerchat without a subcommand is the same as 'routerchat chat'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChat,
}

// Execute runs the root Cobra command and all registered subcommands.
// It prints any returned error and exits the process with a non-zero
// status code on failure.
func Execute() {
	if err := executeRoot(os.Stderr); err != nil {
		os.Exit(1)
	}
}

// executeRoot runs rootCmd and writes a returned error to errOut. Cobra's own
// error output is silenced so the message appears once.
func executeRoot(errOut io.Writer) error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(errOut, err)
	}
	return err
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file to read settings from")
	flags.Bool("debug", false, "log requests, latency and token usage")
	flags.String("log-file", config.DefaultLogFile, "conversation log path (JSON Lines)")

	_ = viper.BindPFlag(config.KeyDebug, flags.Lookup("debug"))
	_ = viper.BindPFlag(config.KeyLogFile, flags.Lookup("log-file"))
}

// loadConfig resolves settings from the bound flags, the environment and
// envFile.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper(), envFile)
}
