// Package cache implements the commands that inspect and maintain the
// classification cache and the processed-file ledger.
package cache

import (
	"fmt"
	"text/tabwriter"

	"fjacquet/statement-organizer/cmd/root"
	"fjacquet/statement-organizer/internal/logging"

	"github.com/spf13/cobra"
)

var (
	clearLedger bool
	toStdout    bool
	csvOutput   bool
)

// Cmd represents the cache command group
var Cmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the classification cache",
	Long: `Cache groups the maintenance commands for the local classification cache
and the ledger of documents already filed.`,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		s := c.GetCache().Stats()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer tw.Flush()
		fmt.Fprintf(tw, "Total files\t%d\n", s.Total)
		fmt.Fprintf(tw, "Classified\t%d\n", s.Classified)
		fmt.Fprintf(tw, "Unclassified\t%d\n", s.Unclassified)
		fmt.Fprintf(tw, "Manual overrides\t%d\n", s.ManualOverrides)
		fmt.Fprintf(tw, "Cache file size\t%.2f KB\n", float64(s.FileBytes)/1024)
		fmt.Fprintf(tw, "Processed ledger entries\t%d\n", len(c.GetTracker().Entries()))
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached classifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		c.GetCache().Clear()
		fmt.Fprintln(cmd.OutOrStdout(), "Classification cache cleared")
		if clearLedger {
			c.GetTracker().Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "Processed ledger cleared")
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export cached classifications as JSON or CSV",
	Long: `Export writes a snapshot of the cache sorted by company and file name. A path
ending in .csv produces CSV, anything else JSON. Without a path the
configured cache.export_file is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		if toStdout {
			if csvOutput {
				return c.GetCache().WriteCSV(cmd.OutOrStdout())
			}
			return c.GetCache().WriteJSON(cmd.OutOrStdout())
		}

		path := c.GetConfig().Cache.ExportFile
		if len(args) > 0 {
			path = args[0]
		}
		if err := c.GetCache().ExportFile(path); err != nil {
			return err
		}
		root.Log.Info("Exported classification cache",
			logging.F(logging.FieldPath, path),
			logging.F(logging.FieldCount, c.GetCache().Len()))
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", c.GetCache().Len(), path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Apply manual classification corrections",
	Long: `Import reads a JSON or YAML document of the form {"files": [{"file_name",
"company", "statement_type", "account_info"}]} and overrides every cached
entry with the same file name. Overridden entries are never replaced by
automatic classification. The import is all or nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		n, err := c.GetCache().ImportManualMapping(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d cached entries\n", n)
		return nil
	},
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "List documents already filed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer tw.Flush()
		fmt.Fprintln(tw, "PROCESSED AT\tFILE\tDESTINATION\tRUN")
		for _, e := range c.GetTracker().Entries() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ProcessedAt, e.FileName, e.DestinationFolderName, e.RunID)
		}
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearLedger, "ledger", false, "Also clear the processed-file ledger")
	exportCmd.Flags().BoolVar(&toStdout, "stdout", false, "Write to standard output instead of a file")
	exportCmd.Flags().BoolVar(&csvOutput, "csv", false, "With --stdout, write CSV instead of JSON")

	Cmd.AddCommand(statsCmd, clearCmd, exportCmd, importCmd, ledgerCmd)
}
