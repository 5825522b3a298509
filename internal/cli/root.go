// Package cli implements riidectl, an offline pricing tool built on the same catalog and
// calculator as the HTTP service.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	infracatalog "riide/internal/infra/catalog"
)

type rootOptions struct {
	catalogPath string
	timezone    string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "riidectl",
		Short:         "Inspect the riide catalog and compute price estimates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", os.Getenv("CATALOG_FILE"), "YAML catalog file (built-in catalog when empty)")
	root.PersistentFlags().StringVar(&opts.timezone, "tz", envOr("PRICING_TZ", "Europe/Paris"), "timezone that defines today")

	root.AddCommand(
		EstimateCmd(opts),
		VehiclesCmd(opts),
		PeriodsCmd(opts),
	)
	return root
}

func (o *rootOptions) loadCatalog() (infracatalog.Catalog, error) {
	if o.catalogPath == "" {
		return infracatalog.Default()
	}
	return infracatalog.Load(o.catalogPath)
}

func (o *rootOptions) location() (*time.Location, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("--tz: %w", err)
	}
	return loc, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
