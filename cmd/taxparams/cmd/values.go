package cmd

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pslmodels/taxparams/pkg/errors"
)

var valuesYear int

// valuesCmd represents the values command
var valuesCmd = &cobra.Command{
	Use:   "values [parameter...]",
	Short: "Show projected parameter values",
	Long: `Values prints the resolved per-year series for the named parameters,
or for every parameter when none are given. Years without a published
value are projected from the indexed status and the grow factor tables.`,
	RunE: runValues,
}

func init() {
	rootCmd.AddCommand(valuesCmd)
	valuesCmd.Flags().IntVar(&valuesYear, "year", 0, "show a single year instead of the full series")
}

func runValues(cmd *cobra.Command, args []string) error {
	tp, err := newTaxParams()
	if err != nil {
		return fmt.Errorf("loading parameters: %w", err)
	}

	names := args
	if len(names) == 0 {
		names = tp.Params().Names()
	}

	if valuesYear != 0 && (valuesYear < tp.StartYear() || valuesYear > tp.EndYear()) {
		return errors.NewRangeError("year", valuesYear, tp.StartYear(), tp.EndYear())
	}

	pr := message.NewPrinter(language.English)
	for i, name := range names {
		def, err := tp.Params().Definition(name)
		if err != nil {
			return err
		}

		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s - %s\n", name, def.Title)

		if valuesYear != 0 {
			v, err := tp.ValueAt(name, valuesYear)
			if err != nil {
				return err
			}
			fmt.Printf("  %d: %s\n", valuesYear, formatAmount(pr, v))
			continue
		}

		vos, err := tp.Values(name)
		if err != nil {
			return err
		}
		for _, vo := range vos {
			fmt.Printf("  %d: %s\n", vo.Year, formatAmount(pr, vo.Value))
		}
	}

	return nil
}

// formatAmount renders dollar amounts with thousands separators and leaves
// rates and sentinel values alone.
func formatAmount(pr *message.Printer, v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return pr.Sprintf("%d", int64(v))
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
