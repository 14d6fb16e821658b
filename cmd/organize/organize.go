// Package organize implements the command that files statements from the
// source folder into the account-organized destination tree.
package organize

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"fjacquet/statement-organizer/cmd/root"
	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/organizer"
	"fjacquet/statement-organizer/internal/report"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	sourceFolderID    string
	destFolderID      string
	sourceFolderName  string
	destFolderName    string
	dryRun            bool
	tagAccountFolders bool
	noProgress        bool
	reportPath        string
)

// Cmd represents the organize command
var Cmd = &cobra.Command{
	Use:   "organize",
	Short: "Copy statements into folders by company and account",
	Long: `Organize lists the source folder, classifies every supported statement and
copies it into the best matching destination folder, creating
company/statement-type folders when nothing matches. Duplicates are skipped
and name clashes get a numbered name.`,
	RunE: organizeFunc,
}

func init() {
	Cmd.Flags().StringVar(&sourceFolderID, "source-folder-id", "", "Google Drive id of the source folder")
	Cmd.Flags().StringVar(&destFolderID, "dest-folder-id", "", "Google Drive id of the destination folder")
	Cmd.Flags().StringVar(&sourceFolderName, "source-folder", "", "Name of the source folder, used when no id is given")
	Cmd.Flags().StringVar(&destFolderName, "dest-folder", "", "Name of the destination folder, used when no id is given")
	Cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Preview changes without making them")
	Cmd.Flags().BoolVar(&tagAccountFolders, "tag-account-folders", false, "Append account digits to folders matched only by company name")
	Cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	Cmd.Flags().StringVar(&reportPath, "report", "", "Write a per-file report of the run (.json or .csv)")
}

func organizeFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	cfg := c.GetConfig()

	opts := organizer.Options{
		Extensions:        cfg.Organize.Extensions,
		DryRun:            dryRun || cfg.Organize.DryRun,
		TagAccountFolders: tagAccountFolders || cfg.Organize.TagAccountFolders,
	}
	if !noProgress {
		opts.Progress = newProgress(cmd.ErrOrStderr())
	}
	if opts.DryRun {
		root.Log.Warn("Running in dry run mode, no changes will be made")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	org, err := c.Organizer(ctx, opts)
	if err != nil {
		return err
	}

	source, err := org.ResolveFolder(ctx, firstNonEmpty(sourceFolderID, cfg.Drive.SourceFolderID), firstNonEmpty(sourceFolderName, cfg.Drive.SourceFolderName))
	if err != nil {
		return fmt.Errorf("source folder: %w", err)
	}
	dest, err := org.ResolveFolder(ctx, firstNonEmpty(destFolderID, cfg.Drive.DestFolderID), firstNonEmpty(destFolderName, cfg.Drive.DestFolderName))
	if err != nil {
		return fmt.Errorf("destination folder: %w", err)
	}

	result, err := org.Organize(ctx, source, dest)
	if result != nil {
		printReport(cmd.OutOrStdout(), result)
		if reportPath != "" {
			if werr := report.NewReportGenerator(root.Log).WriteFile(result, reportPath); werr != nil {
				root.Log.WithError(werr).Error("Failed to write report")
			}
		}
	}
	if err != nil {
		return err
	}
	root.Log.Info("Organization complete",
		logging.F(logging.FieldRunID, result.RunID),
		logging.F("success_rate", fmt.Sprintf("%.1f%%", result.Stats.SuccessRate())))
	return nil
}

// newProgress returns a callback that draws a bar sized on the first call,
// once the number of documents is known.
func newProgress(w io.Writer) organizer.ProgressFunc {
	var bar *progressbar.ProgressBar
	return func(done, total int, fileName string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Organizing statements"),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Describe(fileName)
		if err := bar.Set(done); err != nil {
			root.Log.WithError(err).Debug("Failed to update progress bar")
		}
	}
}

func printReport(w io.Writer, result *organizer.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if result.DryRun {
		fmt.Fprintln(tw, "DRY RUN: no changes were made")
	}
	for _, o := range result.Outcomes {
		dest := o.Destination
		if o.StoredName != "" && o.StoredName != o.File.Name {
			dest = fmt.Sprintf("%s (as %s)", dest, o.StoredName)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Status, o.File.Name, dest)
	}

	s := result.Stats
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Total files\t%d\n", s.Total)
	fmt.Fprintf(tw, "Processed\t%d\n", s.Processed)
	fmt.Fprintf(tw, "Copied\t%d\n", s.Copied)
	fmt.Fprintf(tw, "Renamed\t%d\n", s.Renamed)
	fmt.Fprintf(tw, "Duplicates\t%d\n", s.Duplicates)
	fmt.Fprintf(tw, "Already processed\t%d\n", s.AlreadyProcessed)
	fmt.Fprintf(tw, "Skipped\t%d\n", s.Skipped)
	fmt.Fprintf(tw, "Unclassified\t%d\n", s.Unclassified)
	fmt.Fprintf(tw, "Errors\t%d\n", s.Errors)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
