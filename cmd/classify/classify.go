// Package classify implements the offline classification command.
package classify

import (
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/statement-organizer/cmd/root"
	"fjacquet/statement-organizer/internal/classifier"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/textutils"

	"github.com/spf13/cobra"
)

var (
	localFile string
	useCache  bool
)

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify [file name]",
	Short: "Classify a statement by file name and optional local PDF",
	Long: `Classify prints the company, statement type and account number derived from a
file name. With --file the PDF is read locally and its text is used for
whatever the name does not reveal. No Google Drive access is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: classifyFunc,
}

func init() {
	Cmd.Flags().StringVarP(&localFile, "file", "f", "", "Local PDF to read text from")
	Cmd.Flags().BoolVar(&useCache, "cache", false, "Read and update the classification cache")
}

func classifyFunc(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" && localFile == "" {
		return fmt.Errorf("a file name or --file is required")
	}

	var content []byte
	if localFile != "" {
		data, err := os.ReadFile(localFile) // #nosec G304 -- user supplied path
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", localFile, err)
		}
		content = data
		if name == "" {
			name = filepath.Base(localFile)
		}
	}

	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	var result models.Classification
	if useCache {
		identity := localIdentity(name, content)
		result = c.GetClassifier().Classify(&identity, name, content)
	} else {
		result = classifier.New(c.GetCatalog(), nil, c.GetExtractor(), root.Log).Classify(nil, name, content)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:           %s\n", name)
	fmt.Fprintf(out, "Company:        %s\n", orDash(result.Company))
	fmt.Fprintf(out, "Statement type: %s\n", orDash(result.StatementType))
	fmt.Fprintf(out, "Account:        %s\n", orDash(result.AccountInfo))
	fmt.Fprintf(out, "Account digits: %s\n", orDash(textutils.AccountDigits(result.AccountInfo)))
	if !result.IsComplete() {
		fmt.Fprintln(out, "Result:         unclassified")
	}
	return nil
}

// localIdentity keys a local file by name and size only; there is no remote id.
func localIdentity(name string, content []byte) models.DocumentIdentity {
	identity := models.DocumentIdentity{Name: name}
	if content != nil {
		size := int64(len(content))
		identity.Size = &size
	}
	return identity
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
