package cmd

import (
	"github.com/quatton/qtripal/pkg/expression"
	"github.com/spf13/cobra"
)

var biomaterialCmd = &cobra.Command{
	Use:     "biomaterial",
	Aliases: []string{"biomaterials"},
	Short:   "List, load, delete and sync biomaterials",
}

var biomaterialFilter expression.BiomaterialFilter

var biomaterialListCmd = &cobra.Command{
	Use:   "list",
	Short: "List biomaterials, optionally filtered",
	Long: `List the site's biomaterials. Filters are exact matches and combine with
AND; with no filters every biomaterial is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := GetService(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		items, err := svc.Expression.GetBiomaterials(ctx, biomaterialFilter)
		if err != nil {
			return err
		}
		return printJSON(cmd, items)
	},
}

var biomaterialAddParams expression.AddBiomaterialParams

var biomaterialAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Load biomaterials from an xml, tsv or csv file",
	Example: `  tripalctl biomaterial add --organism-id 5 --file-path /data/biosamples.xml --file-type xml
  tripalctl biomaterial add --organism-id 5 --file-path /data/samples.csv --file-type csv --no-wait`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := GetService(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := svc.Expression.AddBiomaterial(ctx, biomaterialAddParams)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var biomaterialDeleteParams expression.DeleteBiomaterialsParams

var biomaterialDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete biomaterials by name, organism or analysis",
	Long: `Delete biomaterials. At least one of --names, --organism-id or
--analysis-id is required.

--names accepts a comma separated list, a JSON array, or repeated flags.`,
	Example: `  tripalctl biomaterial delete --names leaf-a,leaf-b
  tripalctl biomaterial delete --names '["leaf-a", "leaf-b"]'
  tripalctl biomaterial delete --organism-id 5 --no-wait`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := GetService(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := svc.Expression.DeleteBiomaterials(ctx, biomaterialDeleteParams)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var biomaterialSyncParams expression.SyncBiomaterialsParams

var biomaterialSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Publish biomaterials as Drupal nodes (Tripal 2 only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := GetService(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := svc.Expression.SyncBiomaterials(ctx, biomaterialSyncParams)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	lf := biomaterialListCmd.Flags()
	lf.StringVar(&biomaterialFilter.ProviderID, "provider-id", "", "Only biomaterials from this biosource provider")
	lf.StringVar(&biomaterialFilter.BiomaterialID, "biomaterial-id", "", "Only the biomaterial with this id")
	lf.StringVar(&biomaterialFilter.OrganismID, "organism-id", "", "Only biomaterials of this organism (taxon_id)")
	lf.StringVar(&biomaterialFilter.DbxrefID, "dbxref-id", "", "Only biomaterials with this dbxref")

	af := biomaterialAddCmd.Flags()
	af.StringVar(&biomaterialAddParams.OrganismID, "organism-id", "", "Organism the biomaterials belong to")
	af.StringVar(&biomaterialAddParams.FilePath, "file-path", "", "Biomaterial file on the site's filesystem")
	af.StringVar(&biomaterialAddParams.FileType, "file-type", "", "File format: xml, tsv or csv")
	af.BoolVar(&biomaterialAddParams.NoWait, "no-wait", false, "Return as soon as the job is queued")

	df := biomaterialDeleteCmd.Flags()
	df.Var(&biomaterialDeleteParams.Names, "names", "Biomaterial names to delete")
	df.StringVar(&biomaterialDeleteParams.OrganismID, "organism-id", "", "Delete every biomaterial of this organism")
	df.StringVar(&biomaterialDeleteParams.AnalysisID, "analysis-id", "", "Delete every biomaterial of this analysis")
	df.StringVar(&biomaterialDeleteParams.JobName, "job-name", "", "Name of the queued job")
	df.BoolVar(&biomaterialDeleteParams.NoWait, "no-wait", false, "Return as soon as the job is queued")

	sf := biomaterialSyncCmd.Flags()
	sf.Var(&biomaterialSyncParams.IDs, "ids", "Biomaterial ids to sync (default all)")
	sf.StringVar(&biomaterialSyncParams.MaxSync, "max-sync", "", "Maximum number of records to sync")
	sf.StringVar(&biomaterialSyncParams.JobName, "job-name", "", "Name of the queued job")
	sf.BoolVar(&biomaterialSyncParams.NoWait, "no-wait", false, "Return as soon as the job is queued")

	biomaterialCmd.AddCommand(biomaterialListCmd, biomaterialAddCmd, biomaterialDeleteCmd, biomaterialSyncCmd)
	rootCmd.AddCommand(biomaterialCmd)
}
