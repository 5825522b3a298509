package cli

import (
	"github.com/spf13/cobra"

	"riide/internal/app/dto"
)

func VehiclesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vehicles",
		Short: "List the rentable vehicles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			vehicles, err := cat.Fleet.All(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.VehicleCollection{Vehicles: vehicles})
		},
	}
}

func PeriodsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "List the demand periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.DemandPeriodCollection{Periods: cat.Calendar.Periods()})
		},
	}
}
