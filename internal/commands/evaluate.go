package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newEvaluateCommand(a *app) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "evaluate <input.pdf> [input2.pdf ...]",
		Short: "Print the loan evaluation of statement PDFs as JSON",
		Long: `Runs the full analysis and prints one JSON evaluation per input:
transactions with categories, statement metrics, the loan eligibility
score and a data completeness message. Several inputs are processed in
parallel and printed as a JSON array in input order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, input := range args {
				if err := checkInput(input); err != nil {
					return fmt.Errorf("processing %s: %w", input, err)
				}
			}
			if concurrency > 0 {
				a.cfg.Batch.Concurrency = concurrency
			}

			evs, err := a.evaluator().EvaluateAll(cmd.Context(), args)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if len(evs) == 1 {
				return enc.Encode(evs[0])
			}
			return enc.Encode(evs)
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "statements evaluated at once (default from config, 4)")
	a.addPipelineFlags(cmd)

	return cmd
}
