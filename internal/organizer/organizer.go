// Package organizer runs the end-to-end filing pipeline: list the source
// folder, classify each statement, pick or create its destination folder,
// resolve duplicates and copy.
package organizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/statement-organizer/internal/drive"
	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/matcher"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/sorterror"
	"fjacquet/statement-organizer/internal/textutils"

	"github.com/google/uuid"
)

// Classifier labels a document from its name and optional content.
type Classifier interface {
	Classify(identity *models.DocumentIdentity, name string, content []byte) models.Classification
}

// FolderMatcher picks an existing destination folder for a classification.
type FolderMatcher interface {
	FindTarget(ctx context.Context, rootID string, classification models.Classification) *models.MatchResult
}

// DuplicateResolver decides how a copy should be handled in a destination folder.
type DuplicateResolver interface {
	Assess(ctx context.Context, source models.RemoteFile, destFolderID, name string) models.DuplicateAssessment
	GenerateUniqueName(ctx context.Context, originalName, destFolderID string) string
}

// ProcessedTracker remembers which documents were already filed where.
type ProcessedTracker interface {
	IsProcessed(identity models.DocumentIdentity, destinationFolderID string) bool
	MarkProcessed(identity models.DocumentIdentity, destinationFolderID, destinationFolderName, runID string)
}

// ProgressFunc is called after each source document is handled.
type ProgressFunc func(done, total int, fileName string)

// Options tunes a run.
type Options struct {
	Extensions        []string
	DryRun            bool
	TagAccountFolders bool
	Progress          ProgressFunc
}

// Status is the per-document outcome of a run.
type Status string

const (
	StatusSkipped          Status = "skipped"
	StatusUnclassified     Status = "unclassified"
	StatusAlreadyProcessed Status = "already_processed"
	StatusDuplicate        Status = "duplicate"
	StatusCopied           Status = "copied"
	StatusRenamed          Status = "renamed"
	StatusError            Status = "error"
)

// Outcome describes what happened to one source document.
type Outcome struct {
	File           models.RemoteFile
	Classification models.Classification
	Status         Status
	Destination    string // folder name the document was (or would be) filed under
	DestinationID  string
	StoredName     string
	Reason         string
	Err            error
}

// Report is the result of Organize.
type Report struct {
	RunID    string
	DryRun   bool
	Stats    models.OrganizeStats
	Outcomes []Outcome
}

// Organizer wires the classification and filing components together.
type Organizer struct {
	store      drive.DocumentStore
	classifier Classifier
	matcher    FolderMatcher
	duplicates DuplicateResolver
	tracker    ProcessedTracker
	logger     logging.Logger
	opts       Options
	newRunID   func() string
}

// New creates an Organizer. A nil logger discards output.
func New(store drive.DocumentStore, classifier Classifier, folderMatcher FolderMatcher, duplicates DuplicateResolver, tracker ProcessedTracker, logger logging.Logger, opts Options) *Organizer {
	if logger == nil {
		logger = logging.Nop()
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".pdf"}
	}
	return &Organizer{
		store:      store,
		classifier: classifier,
		matcher:    folderMatcher,
		duplicates: duplicates,
		tracker:    tracker,
		logger:     logger,
		opts:       opts,
		newRunID:   uuid.NewString,
	}
}

// ResolveFolder returns id when set, otherwise the id of the top-level folder
// called name.
func (o *Organizer) ResolveFolder(ctx context.Context, id, name string) (string, error) {
	if id != "" {
		return id, nil
	}
	if name == "" {
		return "", fmt.Errorf("neither a folder id nor a folder name was given")
	}
	found, err := o.store.FindFolder(ctx, name, "")
	if err != nil {
		return "", fmt.Errorf("could not find folder '%s': %w", name, err)
	}
	o.logger.Debug("Resolved folder by name",
		logging.F(logging.FieldFolder, name),
		logging.F(logging.FieldFolderID, found))
	return found, nil
}

// Organize files every supported document of sourceID under destID. Per
// document failures are counted and logged; only a failure to list the
// source or a cancelled context aborts the run.
func (o *Organizer) Organize(ctx context.Context, sourceID, destID string) (*Report, error) {
	report := &Report{RunID: o.newRunID(), DryRun: o.opts.DryRun}
	log := o.logger.WithFields(
		logging.F(logging.FieldRunID, report.RunID),
		logging.F(logging.FieldDryRun, o.opts.DryRun),
	)

	children, err := o.store.ListChildren(ctx, sourceID)
	if err != nil {
		return report, sorterror.NewCollaboratorError("list", sourceID, err)
	}
	documents := models.Documents(children)
	report.Stats.Total = len(documents)
	if len(documents) == 0 {
		log.Warn("No files found in source folder", logging.F(logging.FieldFolderID, sourceID))
		return report, nil
	}
	log.Info("Starting statement organization", logging.F(logging.FieldCount, len(documents)))

	for i, doc := range documents {
		if err := ctx.Err(); err != nil {
			log.Warn("Organization cancelled", logging.F(logging.FieldCount, i))
			return report, err
		}

		outcome := o.organizeOne(ctx, log, report.RunID, doc, destID)
		report.record(outcome)

		if o.opts.Progress != nil {
			o.opts.Progress(i+1, len(documents), doc.Name)
		}
	}

	report.Stats.LogSummary(log)
	return report, nil
}

func (r *Report) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusSkipped:
		r.Stats.Skipped++
		return
	case StatusUnclassified:
		r.Stats.Unclassified++
		return
	case StatusAlreadyProcessed:
		r.Stats.AlreadyProcessed++
		return
	case StatusError:
		r.Stats.Errors++
		return
	case StatusDuplicate:
		r.Stats.Duplicates++
	case StatusCopied:
		r.Stats.Copied++
	case StatusRenamed:
		r.Stats.Renamed++
	}
	r.Stats.Processed++
}

func (o *Organizer) organizeOne(ctx context.Context, runLog logging.Logger, runID string, doc models.RemoteFile, destID string) Outcome {
	outcome := Outcome{File: doc, StoredName: doc.Name}
	log := runLog.WithFields(
		logging.F(logging.FieldFile, doc.Name),
		logging.F(logging.FieldFileID, doc.ID),
	)

	if !doc.HasExtension(o.opts.Extensions) {
		log.Info("Skipping unsupported file")
		outcome.Status = StatusSkipped
		outcome.Reason = "unsupported extension"
		return outcome
	}

	doc = o.completeMetadata(ctx, log, doc)
	outcome.File = doc

	content, err := o.store.FetchContent(ctx, doc.ID)
	if err != nil {
		log.WithError(err).Warn("Could not download file, classifying by name only")
		content = nil
	}

	identity := doc.Identity()
	classification := o.classifier.Classify(&identity, doc.Name, content)
	outcome.Classification = classification
	if !classification.IsComplete() {
		log.Info("Could not classify file")
		outcome.Status = StatusUnclassified
		return outcome
	}
	log = log.WithFields(
		logging.F(logging.FieldCompany, classification.Company),
		logging.F(logging.FieldStatementType, classification.StatementType),
	)

	folderID, folderName, err := o.destination(ctx, log, destID, classification)
	if err != nil {
		log.WithError(err).Error("Could not prepare destination folder")
		outcome.Status = StatusError
		outcome.Err = err
		return outcome
	}
	outcome.Destination = folderName
	outcome.DestinationID = folderID
	log = log.WithField(logging.FieldFolder, folderName)

	if folderID == "" {
		// dry run against a folder that does not exist yet
		log.Info("Would copy file")
		outcome.Status = StatusCopied
		return outcome
	}

	if o.tracker != nil && o.tracker.IsProcessed(identity, folderID) {
		log.Info("File already processed for this destination")
		outcome.Status = StatusAlreadyProcessed
		return outcome
	}

	assessment := o.duplicates.Assess(ctx, doc, folderID, doc.Name)
	outcome.Reason = assessment.Reason
	switch assessment.RecommendedAction {
	case models.ActionSkip:
		log.WithField(logging.FieldReason, assessment.Reason).Info("Duplicate found, skipping copy")
		outcome.Status = StatusDuplicate
		o.markProcessed(identity, folderID, folderName, runID)
		return outcome
	case models.ActionRename:
		outcome.StoredName = o.duplicates.GenerateUniqueName(ctx, doc.Name, folderID)
		outcome.Status = StatusRenamed
	default:
		outcome.Status = StatusCopied
	}

	if o.opts.DryRun {
		log.WithField(logging.FieldAction, string(assessment.RecommendedAction)).
			Info("Would copy file", logging.F("stored_name", outcome.StoredName))
		return outcome
	}

	if _, err := o.store.CopyFile(ctx, doc.ID, outcome.StoredName, folderID); err != nil {
		log.WithError(err).Error("Failed to copy file")
		outcome.Status = StatusError
		outcome.Err = err
		return outcome
	}
	log.Info("Copied file", logging.F("stored_name", outcome.StoredName))
	o.markProcessed(identity, folderID, folderName, runID)
	return outcome
}

func (o *Organizer) markProcessed(identity models.DocumentIdentity, folderID, folderName, runID string) {
	if o.opts.DryRun || o.tracker == nil {
		return
	}
	o.tracker.MarkProcessed(identity, folderID, folderName, runID)
}

// destination returns the folder to file classification under: the matched
// folder when there is one, otherwise company/statementType beneath destID,
// created as needed. Under dry run a missing folder yields an empty id.
func (o *Organizer) destination(ctx context.Context, log logging.Logger, destID string, classification models.Classification) (string, string, error) {
	if target := o.matcher.FindTarget(ctx, destID, classification); target != nil {
		log.Debug("Using matched folder",
			logging.F(logging.FieldFolder, target.FolderName),
			logging.F(logging.FieldScore, target.Score))
		name := o.tagAccountFolder(ctx, log, target, classification)
		return target.FolderID, name, nil
	}

	companyID, err := o.ensureFolder(ctx, log, classification.Company, destID)
	if err != nil || companyID == "" {
		return "", classification.Company + "/" + classification.StatementType, err
	}
	typeID, err := o.ensureFolder(ctx, log, classification.StatementType, companyID)
	return typeID, classification.Company + "/" + classification.StatementType, err
}

// ensureFolder finds name under parentID, creating it unless running dry.
// completeMetadata fills size and content hash when the listing left them
// out. Both feed the document identity and duplicate detection.
func (o *Organizer) completeMetadata(ctx context.Context, log logging.Logger, doc models.RemoteFile) models.RemoteFile {
	if doc.Size != nil && doc.ContentHash != "" {
		return doc
	}
	meta, err := o.store.GetMetadata(ctx, doc.ID)
	if err != nil {
		log.WithError(err).Debug("Could not fetch file metadata")
		return doc
	}
	if doc.Size == nil {
		doc.Size = meta.Size
	}
	if doc.ContentHash == "" {
		doc.ContentHash = meta.ContentHash
	}
	return doc
}

func (o *Organizer) ensureFolder(ctx context.Context, log logging.Logger, name, parentID string) (string, error) {
	id, err := o.store.FindFolder(ctx, name, parentID)
	if err == nil {
		return id, nil
	}
	if !sorterror.IsNotFound(err) {
		return "", err
	}
	if o.opts.DryRun {
		log.Info("Would create folder", logging.F(logging.FieldFolder, name))
		return "", nil
	}
	id, err = o.store.CreateFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	log.Info("Created folder", logging.F(logging.FieldFolder, name), logging.F(logging.FieldFolderID, id))
	return id, nil
}

// tagAccountFolder appends the account digits to a folder picked only by
// company name, so later runs match it on digits. It returns the folder's
// current name.
func (o *Organizer) tagAccountFolder(ctx context.Context, log logging.Logger, target *models.MatchResult, classification models.Classification) string {
	if !o.opts.TagAccountFolders || !matcher.PickedByCompanyName(target) {
		return target.FolderName
	}
	digits := textutils.AccountDigits(classification.AccountInfo)
	if digits == "" || strings.Contains(target.FolderName, digits) {
		return target.FolderName
	}

	newName := fmt.Sprintf("%s -%s", target.FolderName, digits)
	if o.opts.DryRun {
		log.Info("Would rename folder", logging.F("new_name", newName))
		return target.FolderName
	}
	if err := o.store.RenameFolder(ctx, target.FolderID, newName); err != nil {
		log.WithError(err).Warn("Could not tag folder with account digits")
		return target.FolderName
	}
	log.Info("Tagged folder with account digits", logging.F("new_name", newName))
	return newName
}
