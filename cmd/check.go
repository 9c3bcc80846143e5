package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var (
		tenant    string
		date      string
		at        string
		partySize int
		excludeID string
	)

	c := &cobra.Command{
		Use:   "check",
		Short: "Check availability for one request",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()
			if tenant == "" {
				tenant = a.cfg.DefaultTenant
			}
			if date == "" || at == "" {
				return fmt.Errorf("--date and --time are required")
			}

			res, err := a.availability.Check(ctx, tenant, date, at, partySize, excludeID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	c.Flags().StringVar(&tenant, "tenant", "", "tenant id (default DEFAULT_TENANT)")
	c.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD)")
	c.Flags().StringVar(&at, "time", "", "time (HH:MM)")
	c.Flags().IntVar(&partySize, "party-size", 2, "number of guests")
	c.Flags().StringVar(&excludeID, "exclude", "", "reservation id to leave out of the load")
	return c
}
