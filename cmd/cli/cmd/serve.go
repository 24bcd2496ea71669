package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mandrykarina/GC/internal/webui"
)

var port int

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server exposing the simulator.

Endpoints:
  GET    /api/config        simulation defaults, limits and presets
  POST   /api/simulate      run a generated scenario on the collectors
  GET    /api/history       recent runs
  GET    /api/runs/{id}     one run
  DELETE /api/runs/{id}     delete a run
  GET    /api/health        health check
  GET    /metrics           Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Set dynamic example using actual binary name
	binName := BinName()
	serveCmd.Example = `  # Start server on the configured port
  ` + binName + ` serve

  # Specify the port
  ` + binName + ` serve -p 9090

  # Start server with verbose logging
  ` + binName + ` serve -v`

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port for web server (default: server.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := GetLogger()
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()
	if err := svc.Start(ctx); err != nil {
		return err
	}

	serverPort := port
	if serverPort == 0 {
		serverPort = GetConfig().Server.Port
	}
	server := webui.NewServer(svc, serverPort, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("")
	log.Info("GC simulator API listening on http://localhost:%d", serverPort)
	log.Info("Press Ctrl+C to stop")
	log.Info("")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
