package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-analyzer/internal/writer"
)

// Output formats of the convert command.
const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

func newConvertCommand(a *app) *cobra.Command {
	var output, format string
	var includeSource bool

	cmd := &cobra.Command{
		Use:   "convert <input.pdf> [input2.pdf ...]",
		Short: "Convert statement PDFs to CSV or XLSX transaction tables",
		Example: `  statement-analyzer convert statement.pdf
  statement-analyzer convert --format xlsx --output jan.xlsx jan.pdf
  statement-analyzer convert --fix-description jan.pdf feb.pdf mar.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != formatCSV && format != formatXLSX {
				return fmt.Errorf("unknown format %q, use %s or %s", format, formatCSV, formatXLSX)
			}
			if output != "" && len(args) > 1 {
				return fmt.Errorf("--output can only be used with a single input file")
			}

			for _, input := range args {
				if err := a.convertFile(cmd, input, output, format, includeSource); err != nil {
					return fmt.Errorf("processing %s: %w", input, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (defaults to the input name with the format extension)")
	cmd.Flags().StringVar(&format, "format", formatCSV, "output format: csv or xlsx")
	cmd.Flags().BoolVar(&includeSource, "source-header", false, "add a '# Source' line naming the input to CSV output")
	a.addPipelineFlags(cmd)

	return cmd
}

func (a *app) convertFile(cmd *cobra.Command, input, output, format string, includeSource bool) error {
	if err := checkInput(input); err != nil {
		return err
	}
	log := a.log.With().Str("input", input).Logger()
	log.Info().Msg("processing")

	txns, err := a.evaluator().Transactions(cmd.Context(), input)
	if err != nil {
		return err
	}
	log.Info().Int("transactions", len(txns)).Msg("found transactions")
	if len(txns) == 0 {
		log.Warn().Msg("no transactions found, the PDF layout may not match the expected table structure")
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}

	switch format {
	case formatXLSX:
		err = (&writer.XLSXWriter{}).WriteToFile(output, txns)
	default:
		err = (&writer.CSVWriter{IncludeSource: includeSource}).WriteToFile(output, filepath.Base(input), txns)
	}
	if err != nil {
		return fmt.Errorf("%s write failed: %w", strings.ToUpper(format), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d transaction(s) -> %s\n", input, len(txns), output)
	return nil
}

// checkInput rejects missing files and files without a .pdf extension.
func checkInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("input file not found: %w", err)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}
	return nil
}
