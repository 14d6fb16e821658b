package duplicates

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fjacquet/statement-organizer/internal/drive"
	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Resolver, *drive.MemoryStore, string, string) {
	t.Helper()
	store := drive.NewMemoryStore()
	src := store.AddFolder("root", "Monthly Statements")
	dest := store.AddFolder("root", "Chase")
	return New(store, logging.NewMockLogger()), store, src, dest
}

func TestAssess_NoDuplicate(t *testing.T) {
	r, store, src, dest := setup(t)
	source := store.AddFile(src, "chase.pdf", []byte("a"))
	store.AddFile(dest, "other.pdf", []byte("b"))

	got := r.Assess(context.Background(), source, dest, source.Name)

	assert.Equal(t, models.ActionCopy, got.RecommendedAction)
	assert.Equal(t, models.ReasonNoDuplicate, got.Reason)
	assert.Nil(t, got.ExactNameMatch)
	assert.Nil(t, got.ContentMatch)
	assert.Empty(t, got.SimilarNameMatches)
}

func TestAssess_AlreadyPresent(t *testing.T) {
	r, store, _, dest := setup(t)
	source := store.AddFile(dest, "chase.pdf", []byte("a"))

	got := r.Assess(context.Background(), source, dest, source.Name)

	assert.Equal(t, models.ActionSkip, got.RecommendedAction)
	assert.Equal(t, models.ReasonAlreadyPresent, got.Reason)
	require.NotNil(t, got.ExactNameMatch)
	assert.Nil(t, got.ContentMatch, "the exact match is not also a content match")
}

func TestAssess_SameNameSameContent(t *testing.T) {
	r, store, src, dest := setup(t)
	source := store.AddFile(src, "chase.pdf", []byte("same"))
	store.AddFile(dest, "chase.pdf", []byte("same"))

	got := r.Assess(context.Background(), source, dest, source.Name)

	assert.Equal(t, models.ActionSkip, got.RecommendedAction)
	assert.Equal(t, models.ReasonIdenticalContent, got.Reason)
}

func TestAssess_SameNameDifferentContent(t *testing.T) {
	r, store, src, dest := setup(t)
	source := store.AddFile(src, "chase.pdf", []byte("new"))
	store.AddFile(dest, "chase.pdf", []byte("old"))

	got := r.Assess(context.Background(), source, dest, source.Name)

	assert.Equal(t, models.ActionRename, got.RecommendedAction)
	assert.Equal(t, models.ReasonNameConflict, got.Reason)
}

func TestAssess_RenameIsNotDowngradedByContentMatch(t *testing.T) {
	r, store, src, dest := setup(t)
	source := store.AddFile(src, "chase.pdf", []byte("new"))
	store.AddFile(dest, "chase.pdf", []byte("old"))
	elsewhere := store.AddFile(dest, "copy-of-new.pdf", []byte("new"))

	got := r.Assess(context.Background(), source, dest, source.Name)

	assert.Equal(t, models.ActionRename, got.RecommendedAction)
	require.NotNil(t, got.ContentMatch)
	assert.Equal(t, elsewhere.ID, got.ContentMatch.ID)
}

func TestAssess_IdenticalContentElsewhereAfterCopy(t *testing.T) {
	ctx := context.Background()
	r, store, src, dest := setup(t)
	first := store.AddFile(src, "january.pdf", []byte("statement-bytes"))
	second := store.AddFile(src, "january-copy.pdf", []byte("statement-bytes"))

	a := r.Assess(ctx, first, dest, first.Name)
	require.Equal(t, models.ActionCopy, a.RecommendedAction)
	_, err := store.CopyFile(ctx, first.ID, first.Name, dest)
	require.NoError(t, err)

	b := r.Assess(ctx, second, dest, second.Name)
	assert.Equal(t, models.ActionSkip, b.RecommendedAction)
	assert.Equal(t, models.ReasonIdenticalElsewhere, b.Reason)
	require.NotNil(t, b.ContentMatch)
	assert.Equal(t, "january.pdf", b.ContentMatch.Name)
}

func TestAssess_SimilarNamesAreInformational(t *testing.T) {
	r, store, src, dest := setup(t)
	source := store.AddFile(src, "Chase_Statement_2024-02-29.pdf", []byte("feb"))
	store.AddFile(dest, "chase_statement_20240131.pdf", []byte("jan"))
	store.AddFile(dest, "chase_statement_checking.pdf", []byte("x"))
	store.AddFile(dest, "citi.pdf", []byte("y"))

	got := r.Assess(context.Background(), source, dest, source.Name)

	assert.Equal(t, models.ActionCopy, got.RecommendedAction)
	require.Len(t, got.SimilarNameMatches, 2)
	assert.Equal(t, "chase_statement_20240131.pdf", got.SimilarNameMatches[0].Name)
	assert.Equal(t, "chase_statement_checking.pdf", got.SimilarNameMatches[1].Name)
}

func TestAssess_IgnoresFolders(t *testing.T) {
	r, store, src, dest := setup(t)
	source := store.AddFile(src, "chase.pdf", []byte("a"))
	store.AddFolder(dest, "chase.pdf")

	got := r.Assess(context.Background(), source, dest, source.Name)
	assert.Equal(t, models.ActionCopy, got.RecommendedAction)
}

func TestAssess_ListingFailure(t *testing.T) {
	r, store, src, dest := setup(t)
	source := store.AddFile(src, "chase.pdf", []byte("a"))
	store.ListErrors[dest] = errors.New("unavailable")

	got := r.Assess(context.Background(), source, dest, source.Name)

	assert.Equal(t, models.ActionCopy, got.RecommendedAction)
	assert.Equal(t, models.ReasonDestinationUnavailable, got.Reason)
}

func TestAssess_Deterministic(t *testing.T) {
	r, store, src, dest := setup(t)
	source := store.AddFile(src, "chase_2024-01-01.pdf", []byte("a"))
	store.AddFile(dest, "chase_2024-01-01.pdf", []byte("b"))
	store.AddFile(dest, "chase.pdf", []byte("a"))

	first := r.Assess(context.Background(), source, dest, source.Name)
	second := r.Assess(context.Background(), source, dest, source.Name)
	assert.Equal(t, first, second)
}

func TestGenerateUniqueName(t *testing.T) {
	r, store, _, dest := setup(t)
	store.AddFile(dest, "chase.pdf", nil)
	store.AddFile(dest, "chase (1).pdf", nil)
	store.AddFile(dest, "chase (2).pdf", nil)

	got := r.GenerateUniqueName(context.Background(), "chase.pdf", dest)

	assert.Equal(t, "chase (3).pdf", got)
	assert.Equal(t, 3, store.ListCalls[dest], "folder is re-listed on every probe")
}

func TestGenerateUniqueName_NoExtension(t *testing.T) {
	r, _, _, dest := setup(t)
	assert.Equal(t, "README (1)", r.GenerateUniqueName(context.Background(), "README", dest))
}

func TestGenerateUniqueName_FallsBackToTimestamp(t *testing.T) {
	r, store, _, dest := setup(t)
	for i := 1; i <= MaxNameProbes; i++ {
		store.AddFile(dest, fmt.Sprintf("chase (%d).pdf", i), nil)
	}
	r.SetClock(func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) })

	got := r.GenerateUniqueName(context.Background(), "chase.pdf", dest)

	assert.Equal(t, "chase_20240305_140709.pdf", got)
	assert.Equal(t, MaxNameProbes+1, store.ListCalls[dest], "timestamp name is verified too")
}

func TestGenerateUniqueName_TimestampNameTaken(t *testing.T) {
	r, store, _, dest := setup(t)
	for i := 1; i <= MaxNameProbes; i++ {
		store.AddFile(dest, fmt.Sprintf("a (%d).pdf", i), nil)
	}
	store.AddFile(dest, "a_20240101_000000.pdf", nil)
	store.AddFile(dest, "a_20240101_000000_1.pdf", nil)
	r.SetClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })

	got := r.GenerateUniqueName(context.Background(), "a.pdf", dest)

	assert.Equal(t, "a_20240101_000000_2.pdf", got)
	assert.NotContains(t, childNames(t, store, dest), got)
}

func TestGenerateUniqueName_EveryVerifiedNameTaken(t *testing.T) {
	r, store, _, dest := setup(t)
	for i := 1; i <= MaxNameProbes; i++ {
		store.AddFile(dest, fmt.Sprintf("a (%d).pdf", i), nil)
		store.AddFile(dest, fmt.Sprintf("a_20240101_000000_%d.pdf", i), nil)
	}
	store.AddFile(dest, "a_20240101_000000.pdf", nil)
	r.SetClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })
	r.newSuffix = func() string { return "5f2c9a1e" }

	got := r.GenerateUniqueName(context.Background(), "a.pdf", dest)

	assert.Equal(t, "a_20240101_000000_5f2c9a1e.pdf", got)
	assert.NotContains(t, childNames(t, store, dest), got)
}

func TestGenerateUniqueName_ListingFailureUsesRandomSuffix(t *testing.T) {
	r, store, _, dest := setup(t)
	store.ListErrors[dest] = errors.New("down")
	r.SetClock(func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) })
	r.newSuffix = func() string { return "0b7e41d3" }

	got := r.GenerateUniqueName(context.Background(), "chase.pdf", dest)

	assert.Equal(t, "chase_20240102_030405_0b7e41d3.pdf", got)
	assert.Equal(t, 1, store.ListCalls[dest], "probing stops at the first listing failure")
}

func TestGenerateUniqueName_DefaultSuffixIsRandom(t *testing.T) {
	r, store, _, dest := setup(t)
	store.ListErrors[dest] = errors.New("down")

	first := r.GenerateUniqueName(context.Background(), "chase.pdf", dest)
	second := r.GenerateUniqueName(context.Background(), "chase.pdf", dest)

	assert.NotEqual(t, first, second)
}

func childNames(t *testing.T, store *drive.MemoryStore, folderID string) []string {
	t.Helper()
	children, err := store.ListChildren(context.Background(), folderID)
	require.NoError(t, err)
	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, c.Name)
	}
	return names
}
