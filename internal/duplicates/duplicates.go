// Package duplicates compares a candidate copy against the contents of its
// destination folder and recommends copying, skipping or renaming it.
package duplicates

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/textutils"

	"github.com/google/uuid"
)

// MaxNameProbes bounds each probing round of GenerateUniqueName.
const MaxNameProbes = 100

// FolderLister lists the direct children of a folder.
type FolderLister interface {
	ListChildren(ctx context.Context, folderID string) ([]models.RemoteFile, error)
}

// Resolver produces DuplicateAssessments.
type Resolver struct {
	lister    FolderLister
	logger    logging.Logger
	now       func() time.Time
	newSuffix func() string
}

// New creates a Resolver.
func New(lister FolderLister, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Resolver{
		lister:    lister,
		logger:    logger.WithField(logging.FieldComponent, "duplicates"),
		now:       time.Now,
		newSuffix: func() string { return uuid.NewString()[:8] },
	}
}

// SetClock overrides the time source used for fallback names.
func (r *Resolver) SetClock(now func() time.Time) {
	r.now = now
}

// Assess compares source, about to be stored as name in destFolderID, with
// the folder's current files. The result only depends on the listing and
// the source metadata.
func (r *Resolver) Assess(ctx context.Context, source models.RemoteFile, destFolderID, name string) models.DuplicateAssessment {
	assessment := models.DuplicateAssessment{
		RecommendedAction: models.ActionCopy,
		Reason:            models.ReasonNoDuplicate,
	}

	files, err := r.files(ctx, destFolderID)
	if err != nil {
		r.logger.WithError(err).WithField(logging.FieldFolderID, destFolderID).
			Warn("Could not list destination, assuming no duplicate")
		assessment.Reason = models.ReasonDestinationUnavailable
		return assessment
	}

	for i := range files {
		if files[i].Name != name {
			continue
		}
		existing := files[i]
		assessment.ExactNameMatch = &existing
		switch {
		case existing.ID == source.ID:
			assessment.RecommendedAction = models.ActionSkip
			assessment.Reason = models.ReasonAlreadyPresent
		case sameContent(existing, source):
			assessment.RecommendedAction = models.ActionSkip
			assessment.Reason = models.ReasonIdenticalContent
		default:
			assessment.RecommendedAction = models.ActionRename
			assessment.Reason = models.ReasonNameConflict
		}
		break
	}

	for i := range files {
		f := files[i]
		if assessment.ExactNameMatch != nil && f.ID == assessment.ExactNameMatch.ID {
			continue
		}
		if sameContent(f, source) {
			assessment.ContentMatch = &f
			if assessment.RecommendedAction == models.ActionCopy {
				assessment.RecommendedAction = models.ActionSkip
				assessment.Reason = models.ReasonIdenticalElsewhere
			}
			break
		}
	}

	assessment.SimilarNameMatches = similarNames(files, name, assessment.ExactNameMatch)

	r.logger.WithFields(
		logging.F(logging.FieldFile, name),
		logging.F(logging.FieldFolderID, destFolderID),
		logging.F(logging.FieldAction, string(assessment.RecommendedAction)),
		logging.F(logging.FieldReason, assessment.Reason),
	).Debug("Assessed duplicates")
	return assessment
}

// GenerateUniqueName returns "base (i)ext" for the first i in 1..MaxNameProbes
// that is free in destFolderID, re-listing the folder on every probe. If all
// are taken it tries "base_YYYYMMDD_HHMMSSext", then that name with "_i"
// appended. When the folder cannot be listed, or every verified candidate is
// taken, the timestamp name gets a random suffix.
func (r *Resolver) GenerateUniqueName(ctx context.Context, originalName, destFolderID string) string {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(originalName, ext)
	stamp := fmt.Sprintf("%s_%s", base, r.now().Format("20060102_150405"))
	log := r.logger.WithFields(
		logging.F(logging.FieldFile, originalName),
		logging.F(logging.FieldFolderID, destFolderID),
	)

	candidates := make([]string, 0, 2*MaxNameProbes+1)
	for i := 1; i <= MaxNameProbes; i++ {
		candidates = append(candidates, fmt.Sprintf("%s (%d)%s", base, i, ext))
	}
	candidates = append(candidates, stamp+ext)
	for i := 1; i <= MaxNameProbes; i++ {
		candidates = append(candidates, fmt.Sprintf("%s_%d%s", stamp, i, ext))
	}

	for i, candidate := range candidates {
		taken, err := r.exists(ctx, destFolderID, candidate)
		if err != nil {
			log.WithError(err).Warn("Could not verify candidate name, using random suffix")
			break
		}
		if taken {
			continue
		}
		if i >= MaxNameProbes {
			log.WithField(logging.FieldFile, candidate).Warn("Exhausted numbered names, using timestamp suffix")
		}
		return candidate
	}
	return fmt.Sprintf("%s_%s%s", stamp, r.newSuffix(), ext)
}

func (r *Resolver) exists(ctx context.Context, folderID, name string) (bool, error) {
	files, err := r.files(ctx, folderID)
	if err != nil {
		return false, err
	}
	for _, f := range files {
		if f.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *Resolver) files(ctx context.Context, folderID string) ([]models.RemoteFile, error) {
	children, err := r.lister.ListChildren(ctx, folderID)
	if err != nil {
		return nil, err
	}
	return models.Documents(children), nil
}

func sameContent(a, b models.RemoteFile) bool {
	return a.ContentHash != "" && a.ContentHash == b.ContentHash
}

// similarNames reports files whose date-stripped base name equals or is a
// prefix of (or prefixed by) the candidate's. Comparison is case-insensitive.
func similarNames(files []models.RemoteFile, name string, exact *models.RemoteFile) []models.RemoteFile {
	cleaned := textutils.StripTrailingDates(name)
	if cleaned == "" {
		return nil
	}
	var out []models.RemoteFile
	for _, f := range files {
		if exact != nil && f.ID == exact.ID {
			continue
		}
		other := textutils.StripTrailingDates(f.Name)
		if other == "" {
			continue
		}
		if other == cleaned || strings.HasPrefix(other, cleaned) || strings.HasPrefix(cleaned, other) {
			out = append(out, f)
		}
	}
	return out
}
