package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wn7ant/eve-value/pkg/server/refresh"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch once and print the ranked value tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Logs go to stderr so the tables stay clean.
		cfg, logger, err := setup("stderr")
		if err != nil {
			return err
		}

		refresher, err := buildRefresher(cfg, logger)
		if err != nil {
			return err
		}

		snap, err := refresher.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		if snap.State != refresh.StateReady {
			return fmt.Errorf("refresh failed: %s", snap.Err)
		}

		if checkJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		renderSnapshot(cmd.OutOrStdout(), snap)
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the raw snapshot as JSON")
}

// renderSnapshot prints the offer and plan tables. The best value in each
// metric column is marked with an asterisk.
func renderSnapshot(w io.Writer, snap *refresh.Snapshot) {
	fmt.Fprintf(w, "Reference rate: %s ISK/PLEX (%s via %s, %d samples, as of %s)\n",
		snap.Rate.Value.StringFixed(2),
		snap.Rate.Policy,
		snap.Rate.Source,
		snap.Rate.SampleSize,
		snap.Rate.AsOf.UTC().Format(time.RFC3339))

	fmt.Fprintln(w, "\nOffers:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Name\tPrice\tPLEX\tCost/PLEX\tCost/1B ISK")
	for _, row := range snap.Offers {
		if row.Invalid {
			fmt.Fprintf(tw, "%s\t%s\t%d\t(%s)\t\n", row.Name, row.Price, row.Quantity, row.Warning)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			row.Name,
			row.Price.StringFixed(2),
			row.Quantity,
			markBest(row.CostPerUnit, 6, row.BestPerUnit),
			markBest(row.CostPerBlock, 2, row.BestPerBlock),
		)
	}
	tw.Flush()

	if len(snap.Plans) == 0 {
		return
	}

	fmt.Fprintln(w, "\nPlans:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Plan\tMonths\tPrice\tCost/Month\tvia PLEX/Month")
	for _, row := range snap.Plans {
		if row.Invalid {
			fmt.Fprintf(tw, "%s\t%d\t%s\t(%s)\t\n", row.Label, row.Months, row.Price, row.Warning)
			continue
		}

		exchange := "waiting"
		if !row.ExchangeWaiting {
			exchange = markBest(row.ExchangeCostPerMonth, 2, row.BestExchange)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			row.Label,
			row.Months,
			row.Price.StringFixed(2),
			markBest(row.CostPerMonth, 2, row.BestPerMonth),
			exchange,
		)
	}
	tw.Flush()
}

func markBest(v decimal.Decimal, places int32, best bool) string {
	s := v.StringFixed(places)
	if best {
		s += " *"
	}
	return s
}
