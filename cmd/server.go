package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/tablebook/internal/capacity"
	"github.com/example/tablebook/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := openApp(ctx, migrateUp)
			if err != nil {
				return err
			}
			defer a.Close()

			sub := a.policy.Subscribe(a.cfg.DefaultTenant, func(tenant string, cfg capacity.Config) {
				a.log.Info("capacity config changed",
					zap.String("tenant", tenant),
					zap.Int("total_capacity", cfg.TotalCapacity),
					zap.Int("shifts", len(cfg.Shifts)),
				)
			})
			defer sub.Unsubscribe()

			ws := &web.Server{
				Bookings:     a.bookings,
				Availability: a.availability,
				Policy:       a.policy,
				Tables:       a.tables,
				Reservations: a.reservations,
				Log:          a.log,
			}
			return web.Start(ctx, a.cfg.ListenAddr, ws.Routes(), a.log)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
