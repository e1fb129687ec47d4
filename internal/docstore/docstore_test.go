package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	caseerr "github.com/caselens/caselens/internal/errors"
	"github.com/caselens/caselens/internal/judgment"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleCase(title string) *judgment.Judgment {
	return &judgment.Judgment{
		Title:   title,
		Court:   "SUPREME COURT OF INDIA",
		Date:    "14 March 2021",
		Facts:   "The appellant was convicted of murder on circumstantial evidence.",
		Issues:  []string{"Whether conviction can rest on circumstantial evidence alone?"},
		Holding: "Held that the conviction is upheld.",
		Paragraphs: []judgment.Paragraph{
			{Num: 1, Text: "The appellant was convicted."},
		},
	}
}

func TestStore_UpsertAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, sampleCase("Ramesh v. State")))

	j, err := s.Load(ctx, "Ramesh v. State")
	require.NoError(t, err)
	assert.Equal(t, "SUPREME COURT OF INDIA", j.Court)
	assert.Len(t, j.Paragraphs, 1)
	assert.Len(t, j.Issues, 1)
}

func TestStore_UpsertReplacesByTitle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := sampleCase("Ramesh v. State")
	require.NoError(t, s.Upsert(ctx, first))

	updated := sampleCase("Ramesh v. State")
	updated.Holding = "Held that the appeal is allowed."
	require.NoError(t, s.Upsert(ctx, updated))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	j, err := s.Load(ctx, "Ramesh v. State")
	require.NoError(t, err)
	assert.Equal(t, "Held that the appeal is allowed.", j.Holding)
}

func TestStore_UpsertRequiresTitle(t *testing.T) {
	s := openTestStore(t)

	err := s.Upsert(context.Background(), &judgment.Judgment{Title: "  "})
	require.Error(t, err)
	assert.Equal(t, caseerr.ErrCodeInvalidInput, caseerr.GetCode(err))
}

func TestStore_LoadMissingCase(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load(context.Background(), "No Such Case")
	require.Error(t, err)
	assert.Equal(t, caseerr.ErrCodeFileNotFound, caseerr.GetCode(err))
}

func TestStore_ListTitlesSorted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, sampleCase("Zed v. State")))
	require.NoError(t, s.Upsert(ctx, sampleCase("Anand v. State")))

	titles, err := s.ListTitles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anand v. State", "Zed v. State"}, titles)
}

func TestStore_SearchCases(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	murder := sampleCase("Ramesh v. State")
	require.NoError(t, s.Upsert(ctx, murder))

	land := sampleCase("Anand v. Collector")
	land.Facts = "The dispute concerns acquisition of agricultural land."
	land.Issues = []string{"Whether compensation was adequate?"}
	land.Holding = "Held that compensation must be enhanced."
	require.NoError(t, s.Upsert(ctx, land))

	results, err := s.SearchCases(ctx, "circumstantial evidence", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ramesh v. State", results[0].Title)
	assert.Contains(t, results[0].Holding, "conviction is upheld")

	results, err = s.SearchCases(ctx, "compensation", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Anand v. Collector", results[0].Title)
}

func TestStore_SearchCases_EmptyQuery(t *testing.T) {
	s := openTestStore(t)

	results, err := s.SearchCases(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, sampleCase("Ramesh v. State")))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	j, err := reopened.Load(ctx, "Ramesh v. State")
	require.NoError(t, err)
	assert.Equal(t, "Ramesh v. State", j.Title)
}

func TestStore_ClosedRejectsOperations(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.Error(t, s.Upsert(context.Background(), sampleCase("X v. Y")))
	_, err = s.Load(context.Background(), "X v. Y")
	require.Error(t, err)
	assert.NoError(t, s.Close())
}
