package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/initializ/gemini-bridge/config"
	"github.com/initializ/gemini-bridge/server"
	"github.com/initializ/gemini-bridge/types"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: "Run the MCP server. The stdio transport speaks JSON-RPC on stdin/stdout " +
		"and logs to stderr; the http transport serves streamable HTTP at /mcp.",
	RunE: serveRun,
}

func init() {
	serveCmd.Flags().String("transport", types.TransportStdio, "transport: stdio or http")
	serveCmd.Flags().String("addr", ":8080", "listen address for the http transport")

	_ = settings.BindPFlag(config.KeyTransport, serveCmd.Flags().Lookup("transport"))
	_ = settings.BindPFlag(config.KeyAddr, serveCmd.Flags().Lookup("addr"))
}

func serveRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// stdout carries protocol messages; logs must go to stderr.
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	executor := newExecutor(cfg, logger)
	if !executor.Available() {
		logger.Warn("gemini binary not found; gemini tools will fail until it is installed", map[string]any{
			"binary": cfg.Gemini.Binary,
		})
	}

	reg, err := newRegistry(cfg, executor)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Version:  appVersion,
		Registry: reg,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Server.Transport {
	case types.TransportHTTP:
		return server.NewHTTPServer(cfg.Server.Addr, srv, logger).Start(ctx)
	case types.TransportStdio:
		return srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	default:
		return fmt.Errorf("unknown transport %q", cfg.Server.Transport)
	}
}
