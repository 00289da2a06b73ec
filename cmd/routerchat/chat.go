// cmd/routerchat/chat.go
package routerchat

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/k0kubun/pp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mwiater/routerchat/cli"
	"github.com/mwiater/routerchat/internal/config"
	"github.com/mwiater/routerchat/internal/logging"
	"github.com/mwiater/routerchat/internal/openrouter"
	"github.com/mwiater/routerchat/internal/session"
	"github.com/mwiater/routerchat/internal/sessionlog"
)

// Swapped out in tests.
var (
	startTUI = cli.StartTUI
	runREPL  = func(ctx context.Context, r *session.REPL) error {
		_, err := r.Run(ctx)
		return err
	}
	stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

var useTUI bool

// chatCmd represents the 'chat' command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a chat session",
	Long: `The 'chat' command shows the model menu, then sends each question you type
to the selected model until you enter 'quit'. With --tui the session runs in a
full-screen interface and diagnostics go to debug.log.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&useTUI, "tui", false, "use the full-screen interface")
}

// runChat wires config, logging, the API client and the conversation log,
// then hands control to the line loop or the full-screen UI.
func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	tui := useTUI
	if tui && !stdinIsTerminal() {
		fmt.Fprintln(cmd.ErrOrStderr(), "⚠ --tui needs an interactive terminal, falling back to line mode")
		tui = false
	}

	var logger *log.Logger
	if tui {
		l, f, err := logging.ToFile(logging.DebugLogFile, cfg.Debug)
		if err != nil {
			return fmt.Errorf("open %s: %w", logging.DebugLogFile, err)
		}
		defer f.Close()
		logger = l
	} else {
		logger = logging.New(cmd.ErrOrStderr(), cfg.Debug)
	}
	if cfg.Debug {
		dumpConfig(logger.Out, cfg)
	}

	client, err := openrouter.New(cfg, openrouter.WithLogger(logger))
	if err != nil {
		return err
	}
	d := &session.Dispatcher{
		Asker:    client,
		Recorder: sessionlog.New(cfg.LogFile),
		Log:      logger,
	}

	if tui {
		return startTUI(d, cfg.LogFile, cfg.Debug)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return runREPL(ctx, &session.REPL{
		Dispatcher: d,
		LogPath:    cfg.LogFile,
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
	})
}

// dumpConfig pretty-prints the redacted configuration.
func dumpConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Resolved configuration:")
	_, _ = pp.Fprintln(w, cfg.Redacted())
}
