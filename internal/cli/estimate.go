package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"riide/internal/domain/fleet"
	"riide/internal/domain/pricing"
	"riide/internal/domain/shared/daterange"
)

type estimateOptions struct {
	vehicle int
	from    string
	to      string
	asOf    string
	booked  []string
}

func EstimateCmd(opts *rootOptions) *cobra.Command {
	est := &estimateOptions{}
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Compute the price estimate of a rental",
		Long: `Computes the estimate the service would quote for a vehicle and an inclusive date range.
Confirmed bookings that feed the occupancy factor can be simulated with --booked FROM:TO.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			loc, err := opts.location()
			if err != nil {
				return err
			}
			input, err := est.input(cmd.Context(), cat.Fleet, daterange.Today(time.Now(), loc))
			if err != nil {
				return err
			}
			estimate := pricing.NewCalculator(cat.Calendar).Estimate(input)
			return writeJSON(cmd.OutOrStdout(), estimate)
		},
	}

	cmd.Flags().IntVar(&est.vehicle, "vehicle", 0, "vehicle id")
	cmd.Flags().StringVar(&est.from, "from", "", "first rental day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&est.to, "to", "", "last rental day, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&est.asOf, "as-of", "", "reference day for occupancy and last-minute rules (defaults to today)")
	cmd.Flags().StringArrayVar(&est.booked, "booked", nil, "confirmed booking of the vehicle as FROM:TO, repeatable")
	_ = cmd.MarkFlagRequired("vehicle")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (o *estimateOptions) input(ctx context.Context, catalog fleet.Repository, today daterange.Date) (pricing.EstimateInput, error) {
	start, err := daterange.ParseDate(o.from)
	if err != nil {
		return pricing.EstimateInput{}, fmt.Errorf("--from: %w", err)
	}
	end, err := daterange.ParseDate(o.to)
	if err != nil {
		return pricing.EstimateInput{}, fmt.Errorf("--to: %w", err)
	}
	if _, err := daterange.New(start, end); err != nil {
		return pricing.EstimateInput{}, err
	}
	asOf := today
	if o.asOf != "" {
		if asOf, err = daterange.ParseDate(o.asOf); err != nil {
			return pricing.EstimateInput{}, fmt.Errorf("--as-of: %w", err)
		}
	}
	vehicle, err := catalog.ByID(ctx, fleet.VehicleID(o.vehicle))
	if err != nil {
		return pricing.EstimateInput{}, err
	}
	reservations := make([]pricing.Reservation, 0, len(o.booked))
	for _, raw := range o.booked {
		dr, err := parseBooked(raw)
		if err != nil {
			return pricing.EstimateInput{}, err
		}
		reservations = append(reservations, pricing.Reservation{
			VehicleID: vehicle.ID,
			Start:     dr.Start,
			End:       dr.End,
			Status:    pricing.StatusConfirmed,
		})
	}
	return pricing.EstimateInput{
		Start:        start,
		End:          end,
		Vehicle:      vehicle,
		Reservations: reservations,
		AsOf:         asOf,
	}, nil
}

func parseBooked(raw string) (daterange.DateRange, error) {
	from, to, ok := strings.Cut(raw, ":")
	if !ok {
		return daterange.DateRange{}, fmt.Errorf("--booked %q: expected FROM:TO", raw)
	}
	start, err := daterange.ParseDate(strings.TrimSpace(from))
	if err != nil {
		return daterange.DateRange{}, fmt.Errorf("--booked %q: %w", raw, err)
	}
	end, err := daterange.ParseDate(strings.TrimSpace(to))
	if err != nil {
		return daterange.DateRange{}, fmt.Errorf("--booked %q: %w", raw, err)
	}
	return daterange.New(start, end)
}
