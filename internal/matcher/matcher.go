// Package matcher picks the destination folder for a classified document by
// scoring the existing folders of the destination root.
package matcher

import (
	"context"
	"sort"
	"strings"

	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/patterns"
	"fjacquet/statement-organizer/internal/textutils"
)

// ReasonCompanyName marks a pick made by the company-name scan rather than
// by score.
const ReasonCompanyName = "company_name"

// Score thresholds used during resolution.
const (
	// Below this a scored pick can be overridden by a company-name match.
	CompanyOverrideThreshold = 15
	// A scored pick needs at least this much to be accepted on its own.
	MinimumScore = 10
)

// FolderLister lists the direct children of a folder.
type FolderLister interface {
	ListChildren(ctx context.Context, folderID string) ([]models.RemoteFile, error)
}

// Matcher scores folders with Rules and resolves the best target.
type Matcher struct {
	lister  FolderLister
	catalog *patterns.Catalog
	logger  logging.Logger
}

// New creates a Matcher. catalog supplies the folder alias table.
func New(lister FolderLister, catalog *patterns.Catalog, logger logging.Logger) *Matcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Matcher{
		lister:  lister,
		catalog: catalog,
		logger:  logger.WithField(logging.FieldComponent, "matcher"),
	}
}

// Score evaluates every rule in order against folderName.
func (m *Matcher) Score(folderName string, classification models.Classification) (int, []string) {
	return m.score(Candidate{
		FolderName:     folderName,
		Classification: classification,
		AccountDigits:  textutils.AccountDigits(classification.AccountInfo),
	})
}

func (m *Matcher) score(c Candidate) (int, []string) {
	total := 0
	var reasons []string
	for _, rule := range Rules {
		points, reason := rule.Apply(m.catalog, c)
		if points > 0 {
			total += points
			reasons = append(reasons, reason)
		}
	}
	return total, reasons
}

// Candidates scores every child folder of rootID. Results are ordered by
// descending score; equal scores keep listing order.
func (m *Matcher) Candidates(ctx context.Context, rootID string, classification models.Classification) ([]models.MatchResult, error) {
	folders, err := m.folders(ctx, rootID)
	if err != nil {
		return nil, err
	}
	results := m.scoreAll(folders, classification)
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results, nil
}

// FindTarget returns the destination folder for classification under rootID,
// or nil when a new folder structure should be created. Listing failures are
// logged and reported as no match.
func (m *Matcher) FindTarget(ctx context.Context, rootID string, classification models.Classification) *models.MatchResult {
	log := m.logger.WithFields(
		logging.F(logging.FieldFolderID, rootID),
		logging.F(logging.FieldCompany, classification.Company),
		logging.F(logging.FieldStatementType, classification.StatementType),
	)

	folders, err := m.folders(ctx, rootID)
	if err != nil {
		log.WithError(err).Warn("Could not list destination folders, treating as no match")
		return nil
	}

	var best *models.MatchResult
	for _, r := range m.scoreAll(folders, classification) {
		if r.Score > 0 && (best == nil || r.Score > best.Score) {
			picked := r
			best = &picked
		}
	}

	if best != nil {
		if best.Score < CompanyOverrideThreshold && classification.Company != "" {
			if hit := m.companyNameScan(folders, classification); hit != nil {
				log.WithField(logging.FieldFolder, hit.FolderName).Debug("Company name overrides weak scored match")
				return hit
			}
		}
		if best.Score >= MinimumScore {
			log.WithFields(
				logging.F(logging.FieldFolder, best.FolderName),
				logging.F(logging.FieldScore, best.Score),
			).Debug("Matched destination folder")
			return best
		}
		log.WithField(logging.FieldScore, best.Score).Debug("Best score too low, no match")
		return nil
	}

	if classification.Company != "" {
		if hit := m.companyNameScan(folders, classification); hit != nil {
			log.WithField(logging.FieldFolder, hit.FolderName).Debug("Matched destination folder by company name")
			return hit
		}
	}
	return nil
}

// companyNameScan returns the first folder whose lowercased name equals or
// contains the company.
func (m *Matcher) companyNameScan(folders []models.RemoteFile, classification models.Classification) *models.MatchResult {
	company := strings.ToLower(classification.Company)
	for _, f := range folders {
		name := strings.ToLower(f.Name)
		if name == company || strings.Contains(name, company) {
			score, reasons := m.Score(f.Name, classification)
			return &models.MatchResult{
				FolderID:   f.ID,
				FolderName: f.Name,
				Score:      score,
				Reasons:    append(reasons, ReasonCompanyName),
			}
		}
	}
	return nil
}

func (m *Matcher) folders(ctx context.Context, rootID string) ([]models.RemoteFile, error) {
	children, err := m.lister.ListChildren(ctx, rootID)
	if err != nil {
		return nil, err
	}
	return models.Folders(children), nil
}

func (m *Matcher) scoreAll(folders []models.RemoteFile, classification models.Classification) []models.MatchResult {
	digits := textutils.AccountDigits(classification.AccountInfo)
	results := make([]models.MatchResult, 0, len(folders))
	for _, f := range folders {
		score, reasons := m.score(Candidate{
			FolderName:     f.Name,
			Classification: classification,
			AccountDigits:  digits,
		})
		results = append(results, models.MatchResult{
			FolderID:   f.ID,
			FolderName: f.Name,
			Score:      score,
			Reasons:    reasons,
		})
	}
	return results
}

// PickedByCompanyName reports whether r came from the company-name scan.
func PickedByCompanyName(r *models.MatchResult) bool {
	if r == nil {
		return false
	}
	for _, reason := range r.Reasons {
		if reason == ReasonCompanyName {
			return true
		}
	}
	return false
}
