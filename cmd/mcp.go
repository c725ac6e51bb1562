package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/cv-compare/internal/api"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the analysis tools over MCP stdio",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		serveMCP()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func serveMCP() {
	ctx, cancel := signalContext()
	defer cancel()

	// stdout carries the protocol.
	config, logger := setup("stderr")
	engine := newEngineOrDie(config, logger)
	store := openStore(config, logger)
	defer store.Close()

	srv := api.NewMCPServer(api.Deps{Engine: engine, Store: store, Logger: logger}, version)

	logger.Info("mcp server started", zap.String("transport", "stdio"), zap.String("version", version))
	if err := api.ServeStdio(ctx, srv, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp stdio server", zap.Error(err))
	}
}
