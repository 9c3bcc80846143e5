package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/tablebook/internal/capacity"
)

func newConfigCmd() *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change a tenant's capacity configuration",
	}
	cmd.PersistentFlags().StringVar(&tenant, "tenant", "", "tenant id (default DEFAULT_TENANT)")

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg, err := a.policy.Get(ctx, orDefault(tenant, a.cfg.DefaultTenant))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set key=value...",
		Short: "Merge overrides into the stored configuration",
		Long: `Keys: total_capacity, max_party_size, standard_duration_min, buffer_min,
slot_interval_min, slot_rounding (nearest|floor|ceil),
shifts (e.g. 13:00-16:00,20:00-23:30), closed_dates (e.g. 2026-12-25,2027-01-01).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseOverrides(args)
			if err != nil {
				return err
			}
			ctx := context.Background()
			a, err := openApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg, err := a.policy.Update(ctx, orDefault(tenant, a.cfg.DefaultTenant), patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cfg)
		},
	})

	return cmd
}

func parseOverrides(args []string) (capacity.Overrides, error) {
	var o capacity.Overrides
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			return o, fmt.Errorf("expected key=value, got %q", arg)
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)

		switch key {
		case "total_capacity", "max_party_size", "standard_duration_min", "buffer_min", "slot_interval_min":
			n, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return o, fmt.Errorf("%s: %w", key, err)
			}
			switch key {
			case "total_capacity":
				o.TotalCapacity = &n
			case "max_party_size":
				o.MaxPartySize = &n
			case "standard_duration_min":
				o.StandardDurationMin = &n
			case "buffer_min":
				o.BufferMin = &n
			case "slot_interval_min":
				o.SlotIntervalMin = &n
			}
		case "slot_rounding":
			o.SlotRounding = &val
		case "shifts":
			o.Shifts = []capacity.Shift{}
			for _, part := range splitList(val) {
				start, end, ok := strings.Cut(part, "-")
				if !ok {
					return o, fmt.Errorf("shifts: expected start-end, got %q", part)
				}
				o.Shifts = append(o.Shifts, capacity.Shift{Start: start, End: end})
			}
		case "closed_dates":
			o.ClosedDates = splitList(val)
		default:
			return o, fmt.Errorf("unknown key %q", key)
		}
	}
	return o, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
