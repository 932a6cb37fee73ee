package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pslmodels/taxparams/pkg/logging"
	"github.com/pslmodels/taxparams/pkg/params"
)

var (
	adjustStrict     bool
	adjustShowValues bool
)

// adjustCmd represents the adjust command
var adjustCmd = &cobra.Command{
	Use:   "adjust <reform.yaml>",
	Short: "Apply a reform and show the resolved adjustment",
	Long: `Adjust reads a reform yaml document, resolves its interactions with
parameter indexing, applies it, and prints the resolved adjustment: the
requested changes plus every recomputed value they imply.

Example reform:

  CPI_offset:
    - { year: 2021, value: -0.005 }
  CTC_c-indexed:
    - { year: 2021, value: true }
  EITC_c:
    - { year: 2022, value: 600 }`,
	Args: cobra.ExactArgs(1),
	RunE: runAdjust,
}

func init() {
	rootCmd.AddCommand(adjustCmd)
	adjustCmd.Flags().BoolVar(&adjustStrict, "strict", true, "reject unknown parameter names")
	adjustCmd.Flags().BoolVar(&adjustShowValues, "show-values", false, "also print the full post-reform series for affected parameters")
}

func runAdjust(cmd *cobra.Command, args []string) error {
	tp, err := newTaxParams()
	if err != nil {
		return fmt.Errorf("loading parameters: %w", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading reform: %w", err)
	}

	adj, err := tp.Params().ReadParams(data)
	if err != nil {
		return fmt.Errorf("parsing reform: %w", err)
	}

	logging.Debug().Int("keys", len(adj)).Str("file", args[0]).Msg("Applying reform")

	resolved, err := tp.Adjust(adj, params.WithStrictValidation(adjustStrict))
	if err != nil {
		return fmt.Errorf("applying reform: %w", err)
	}

	pr := message.NewPrinter(language.English)
	fmt.Println("Resolved adjustment:")
	for _, key := range resolved.Keys() {
		fmt.Printf("  %s\n", key)
		for _, v := range resolved[key] {
			if f, ok := v.Float(); ok {
				fmt.Printf("    %d: %s\n", v.Year, formatAmount(pr, f))
			} else {
				fmt.Printf("    %d: %v\n", v.Year, v.Value)
			}
		}
	}

	if !adjustShowValues {
		return nil
	}

	fmt.Println()
	fmt.Println("Post-reform values:")
	for _, key := range resolved.Keys() {
		if !tp.Params().Has(key) {
			continue
		}
		vos, err := tp.Values(key)
		if err != nil {
			return err
		}
		fmt.Printf("  %s\n", key)
		for _, vo := range vos {
			fmt.Printf("    %d: %s\n", vo.Year, formatAmount(pr, vo.Value))
		}
	}

	return nil
}
