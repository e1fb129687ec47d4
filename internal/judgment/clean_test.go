package judgment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText_StripsBoilerplate(t *testing.T) {
	raw := `The petitioner approached this court.
Indian Kanoon - http://indiankanoon.org/doc/12345/
Signature Not Verified
Digitally Signed by REGISTRAR
Page 3 of 17
The respondent opposed the petition.`

	cleaned := CleanText(raw)

	assert.Contains(t, cleaned, "The petitioner approached this court.")
	assert.Contains(t, cleaned, "The respondent opposed the petition.")
	assert.NotContains(t, cleaned, "Indian Kanoon")
	assert.NotContains(t, cleaned, "Signature Not Verified")
	assert.NotContains(t, cleaned, "Digitally Signed")
	assert.NotContains(t, cleaned, "Page 3 of 17")
}

func TestCleanText_StripsTimestampLines(t *testing.T) {
	raw := "Order reserved.\n12:45:03\nOrder pronounced."
	cleaned := CleanText(raw)

	assert.NotContains(t, cleaned, "12:45:03")
	assert.Contains(t, cleaned, "Order reserved.")
}

func TestSplitBlocks(t *testing.T) {
	blocks := SplitBlocks("first para\n\nsecond para\n\n\n\nthird para")
	assert.Equal(t, []string{"first para", "second para", "third para"}, blocks)

	assert.Empty(t, SplitBlocks("   \n\n  "))
}

func TestDetectStart_FindsJudgmentMarker(t *testing.T) {
	blocks := []string{
		"IN THE HIGH COURT OF DELHI",
		"W.P.(C) 1234/2020",
		"JUDGMENT",
		"1. The petitioner seeks a writ of mandamus.",
	}
	assert.Equal(t, 2, DetectStart(blocks))
}

func TestDetectStart_NoMarkerKeepsWholeDocument(t *testing.T) {
	blocks := []string{"some preliminary text", "more text"}
	assert.Equal(t, 0, DetectStart(blocks))
}

func TestExtractParagraphs_NumbersFromOne(t *testing.T) {
	raw := `IN THE HIGH COURT OF DELHI

JUDGMENT

1. The petitioner filed this writ petition.

2. The respondent filed a counter affidavit.`

	paras := ExtractParagraphs(raw)
	require.NotEmpty(t, paras)

	assert.Equal(t, 1, paras[0].Num)
	for i := 1; i < len(paras); i++ {
		assert.Equal(t, paras[i-1].Num+1, paras[i].Num)
	}
	assert.Contains(t, paras[len(paras)-1].Text, "counter affidavit")
}
