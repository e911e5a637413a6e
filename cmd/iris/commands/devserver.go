package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iristrack/core/internal/infrastructure/server"
)

// NewDevServerCommand creates the devserver command
func NewDevServerCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local auth and catalog stub for development",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := newApp()
			if err != nil {
				log.Fatal(err)
			}
			defer a.close()

			if cmd.Flags().Changed("port") {
				a.cfg.DevServer.Port = port
			}

			srv, err := server.New(a.cfg.DevServer, a.logger)
			if err != nil {
				a.logger.Fatalw("Failed to create server", "error", err)
			}

			go func() {
				addr := fmt.Sprintf(":%d", a.cfg.DevServer.Port)
				a.logger.Infow("Starting dev server", "addr", addr)
				if err := srv.Start(addr); err != nil {
					a.logger.Infow("Server stopped", "reason", err)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			a.logger.Info("Shutting down dev server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				a.logger.Errorw("Forced shutdown", "error", err)
			}
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	return cmd
}
