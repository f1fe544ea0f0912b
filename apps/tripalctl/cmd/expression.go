package cmd

import (
	"github.com/quatton/qtripal/pkg/expression"
	"github.com/spf13/cobra"
)

var expressionCmd = &cobra.Command{
	Use:   "expression",
	Short: "Load expression data",
}

var expressionParams expression.AddExpressionParams

var expressionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Queue the expression loader for a file or directory",
	Long: `Queue tripal_expression_loader for an expression file, or a directory of
them, against an organism and analysis.

Matrix files are the default. Pass --use-column together with
--file-extension for column-format files.

Examples:
  tripalctl expression add --organism-id 5 --analysis-id 8 --file-path /data/expr.tsv
  tripalctl expression add --organism-id 5 --analysis-id 8 --file-path /data/expr \
    --use-column --file-extension tsv --match-type name --no-wait`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := GetService(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := svc.Expression.AddExpression(ctx, expressionParams)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	f := expressionAddCmd.Flags()
	p := &expressionParams
	f.StringVar(&p.OrganismID, "organism-id", "", "Organism the expression data belongs to")
	f.StringVar(&p.AnalysisID, "analysis-id", "", "Analysis the expression data belongs to")
	f.StringVar(&p.FilePath, "file-path", "", "Expression file or directory on the site's filesystem")
	f.StringVar(&p.MatchType, "match-type", "", "Match features by uniquename (default) or name")
	f.StringVar(&p.BiomaterialProvider, "biomaterial-provider", "", "Biomaterial provider contact (Tripal 3)")
	f.StringVar(&p.ArrayDesign, "array-design", "", "Array design id (Tripal 3)")
	f.StringVar(&p.AssayID, "assay-id", "", "Assay id (Tripal 3)")
	f.StringVar(&p.AcquisitionID, "acquisition-id", "", "Acquisition id (Tripal 3)")
	f.StringVar(&p.QuantificationID, "quantification-id", "", "Quantification id (Tripal 3)")
	f.StringVar(&p.FileExtension, "file-extension", "", "Extension of files to load, without the dot")
	f.StringVar(&p.StartRegex, "start-regex", "", "Regex of the line before the data starts")
	f.StringVar(&p.StopRegex, "stop-regex", "", "Regex of the line after the data ends")
	f.BoolVar(&p.UseColumn, "use-column", false, "Input is column format rather than matrix")
	f.BoolVar(&p.NoWait, "no-wait", false, "Return as soon as the job is queued")

	expressionCmd.AddCommand(expressionAddCmd)
	rootCmd.AddCommand(expressionCmd)
}
