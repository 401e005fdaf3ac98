package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"planilhas/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local companion server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := bootstrap(false)
		if err != nil {
			return err
		}
		defer e.Close()

		port := e.cfg.ServePort
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		server := web.NewServer(e.app, e.logger, e.cfg)
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		if err := server.Start(ctx, addr); err != nil {
			e.logger.Error("Web server stopped", zap.Error(err))
			return err
		}
		e.logger.Info("Server exited gracefully")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (SERVE_PORT)")
}
