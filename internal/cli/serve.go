package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/guibruno93/lorcana-companion/internal/api"
	"github.com/guibruno93/lorcana-companion/internal/config"
)

// apiConfig maps the [server] section onto the API server settings.
func apiConfig(cfg *config.Config) *api.Config {
	out := api.DefaultConfig()
	out.Host = cfg.Server.Host
	out.Port = cfg.Server.Port
	out.CORSOrigins = cfg.Server.CORSOrigins
	out.RateLimit = cfg.Server.RateLimit
	out.RateBurst = cfg.Server.RateBurst
	if d, err := cfg.GetReadTimeout(); err == nil {
		out.ReadTimeout = d
	}
	if d, err := cfg.GetWriteTimeout(); err == nil {
		out.WriteTimeout = d
	}
	if d, err := cfg.GetRequestTimeout(); err == nil {
		out.RequestTimeout = d
	}
	return out
}

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			svc, err := a.service()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if a.cfg.Catalog.Watch {
				loader := a.catalogLoader()
				go func() {
					if err := loader.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
						a.logger.Warn("catalog watcher stopped", "error", err)
					}
				}()
			}

			server := api.NewServer(apiConfig(a.cfg), &api.Services{Deck: svc, Card: svc, System: svc}, a.logger)
			if err := server.Start(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API server running at http://%s\n", server.ListenAddr())

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8484, "port to listen on")
	return cmd
}
