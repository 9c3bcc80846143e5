package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/tables"
)

func newTablesCmd() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Inspect and manage restaurant tables",
	}
	cmd.PersistentFlags().StringVar(&tenant, "tenant", "", "tenant id (default DEFAULT_TENANT)")
	cmd.AddCommand(newTablesAvailableCmd(&tenant))
	cmd.AddCommand(newTablesAddCmd(&tenant))
	return cmd
}

func newTablesAvailableCmd(tenant *string) *cobra.Command {
	var (
		date      string
		at        string
		partySize int
		excludeID string
	)

	c := &cobra.Command{
		Use:   "available",
		Short: "List tables that can seat a party, best first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			req := tables.Request{
				Tenant:    orDefault(*tenant, a.cfg.DefaultTenant),
				Date:      date,
				Time:      at,
				PartySize: partySize,
				ExcludeID: excludeID,
			}
			cfg, err := a.policy.Get(ctx, req.Tenant)
			if err != nil {
				return err
			}
			list, err := a.tables.ListTables(ctx, req.Tenant)
			if err != nil {
				return err
			}
			booked, err := a.reservations.ListActiveByDate(ctx, req.Tenant, req.Date)
			if err != nil {
				return err
			}

			free := tables.ListAvailable(cfg, req, list, booked)
			if len(free) == 0 {
				alts := tables.SuggestAlternativeTimesByTables(cfg, req, list, booked)
				fmt.Fprintln(cmd.OutOrStdout(), "no table free; nearest times:")
				return printJSON(cmd.OutOrStdout(), alts)
			}
			return printJSON(cmd.OutOrStdout(), free)
		},
	}

	c.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD)")
	c.Flags().StringVar(&at, "time", "", "time (HH:MM)")
	c.Flags().IntVar(&partySize, "party-size", 2, "number of guests")
	c.Flags().StringVar(&excludeID, "exclude", "", "reservation id whose table counts as free")
	return c
}

func newTablesAddCmd(tenant *string) *cobra.Command {
	var t reservation.Table
	var kind, status string

	c := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a table (requires DATABASE_URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if t.ID == "" || t.Name == "" || t.Capacity < 1 {
				return fmt.Errorf("--id, --name and a positive --capacity are required")
			}
			ctx := context.Background()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.tableRepo == nil {
				return fmt.Errorf("DATABASE_URL is required")
			}

			t.TenantID = orDefault(*tenant, a.cfg.DefaultTenant)
			t.Kind = reservation.TableKind(kind)
			t.Status = reservation.TableStatus(status)
			if err := a.tableRepo.PutTable(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "table %s saved for %s\n", t.ID, t.TenantID)
			return nil
		},
	}

	c.Flags().StringVar(&t.ID, "id", "", "table id")
	c.Flags().StringVar(&t.Name, "name", "", "display name")
	c.Flags().IntVar(&t.Capacity, "capacity", 0, "seats")
	c.Flags().StringVar(&kind, "kind", string(reservation.KindTable), "table or stool")
	c.Flags().StringVar(&status, "status", string(reservation.TableFree), "free, occupied, reserved or blocked")
	c.Flags().StringVar(&t.Zone, "zone", "", "zone label")
	return c
}
