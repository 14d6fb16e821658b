// Package match implements the command that shows how destination folders
// score for a classification.
package match

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"fjacquet/statement-organizer/cmd/root"
	"fjacquet/statement-organizer/internal/models"

	"github.com/spf13/cobra"
)

var (
	company       string
	statementType string
	account       string
	destFolderID  string
	destFolder    string
)

// Cmd represents the match command
var Cmd = &cobra.Command{
	Use:   "match [file name]",
	Short: "Show scored destination folders for a statement",
	Long: `Match scores every folder directly under the destination folder for the
given classification and prints the folder organize would pick. The
classification comes from a file name argument, from flags, or both (flags
win).`,
	Args: cobra.MaximumNArgs(1),
	RunE: matchFunc,
}

func init() {
	Cmd.Flags().StringVar(&company, "company", "", "Company, e.g. chase")
	Cmd.Flags().StringVar(&statementType, "type", "", "Statement type, e.g. \"bank statement\"")
	Cmd.Flags().StringVar(&account, "account", "", "Account number or its last digits")
	Cmd.Flags().StringVar(&destFolderID, "dest-folder-id", "", "Google Drive id of the destination folder")
	Cmd.Flags().StringVar(&destFolder, "dest-folder", "", "Name of the destination folder, used when no id is given")
}

func matchFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	var classification models.Classification
	if len(args) > 0 {
		classification = c.GetClassifier().Classify(nil, args[0], nil)
	}
	if company != "" {
		classification.Company = strings.ToLower(company)
	}
	if statementType != "" {
		classification.StatementType = strings.ToLower(statementType)
	}
	if account != "" {
		classification.AccountInfo = account
	}
	if classification.Company == "" && classification.StatementType == "" && classification.AccountInfo == "" {
		return fmt.Errorf("nothing to match: give a file name or --company/--type/--account")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ds, err := c.DocumentStore(ctx)
	if err != nil {
		return err
	}
	cfg := c.GetConfig()
	rootID := firstNonEmpty(destFolderID, cfg.Drive.DestFolderID)
	if rootID == "" {
		name := firstNonEmpty(destFolder, cfg.Drive.DestFolderName)
		if rootID, err = ds.FindFolder(ctx, name, ""); err != nil {
			return fmt.Errorf("destination folder '%s': %w", name, err)
		}
	}

	m, err := c.Matcher(ctx)
	if err != nil {
		return err
	}
	candidates, err := m.Candidates(ctx, rootID, classification)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Company: %s  Type: %s  Account: %s\n\n",
		orDash(classification.Company), orDash(classification.StatementType), orDash(classification.AccountInfo))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tFOLDER\tREASONS")
	for _, r := range candidates {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Score, r.FolderName, strings.Join(r.Reasons, ","))
	}
	tw.Flush()

	if target := m.FindTarget(ctx, rootID, classification); target != nil {
		fmt.Fprintf(out, "\nTarget: %s (score %d)\n", target.FolderName, target.Score)
	} else {
		fmt.Fprintf(out, "\nTarget: none, organize would create %s/%s\n",
			orDash(classification.Company), orDash(classification.StatementType))
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
