// cmd/mock-openrouter/main.go

// mock-openrouter serves a fake OpenRouter API on localhost so routerchat can
// be exercised without a credential or network access:
//
//	mock-openrouter --port 8001
//	OPENROUTER_API_KEY=any OPENROUTER_BASE_URL=http://localhost:8001/api/v1 routerchat
package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mwiater/routerchat/internal/logging"
	"github.com/mwiater/routerchat/internal/mockprovider"
)

func newRootCmd() *cobra.Command {
	var (
		port  int
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "mock-openrouter",
		Short: "Run a local mock of the OpenRouter chat API",
		Long:  `Serves /api/v1/chat/completions, /api/v1/models and /health. Questions starting with /fail <code>, /empty, /nocontent or /malformed trigger the matching failure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(os.Stderr, debug)
			logger.SetLevel(log.InfoLevel)
			if debug {
				logger.SetLevel(log.DebugLevel)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}
			addr := fmt.Sprintf(":%d", port)
			logger.Infof("Mock OpenRouter provider starting on %s", addr)
			return mockprovider.NewRouter(logger).Run(addr)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8001, "port to listen on")
	cmd.Flags().BoolVar(&debug, "debug", false, "log every request body decision")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
