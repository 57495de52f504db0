package bracket

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFindContentRefs_SingleMatch(t *testing.T) {
	text := "{{photo 6a32fa16-bdff-4690-ada9-0da017e99d0e; 2020 June Disappearing into the Flower}}"

	refs := FindContentRefs(text, "photo")

	assert.Len(t, refs, 1)
	assert.Equal(t, "6a32fa16-bdff-4690-ada9-0da017e99d0e", refs[0].ContentID.String())
	assert.Equal(t, "2020 June Disappearing into the Flower", refs[0].DisplayText)
	assert.Equal(t, text, refs[0].RawText)
}

func TestFindContentRefs_BackToBack(t *testing.T) {
	ids := make([]uuid.UUID, 5)
	text := ""
	for i := range ids {
		ids[i] = uuid.New()
		text += fmt.Sprintf("{{photo %s; picture %d}}", ids[i], i)
	}

	refs := FindContentRefs(text, "photo")

	assert.Len(t, refs, 5)
	found := make(map[uuid.UUID]bool)
	for _, r := range refs {
		found[r.ContentID] = true
	}
	for _, id := range ids {
		assert.True(t, found[id], "missing ref for %s", id)
	}
}

func TestFindContentRefs_SurroundingProse(t *testing.T) {
	id := uuid.New()
	text := fmt.Sprintf("leading words {{photo %s; A Title}} trailing words", id)

	refs := FindContentRefs(text, "photo")

	assert.Len(t, refs, 1)
	assert.Equal(t, id, refs[0].ContentID)
	assert.Equal(t, "A Title", refs[0].DisplayText)
}

func TestFindContentRefs_NoIDIsNotAContentRef(t *testing.T) {
	refs := FindContentRefs("{{photo; no id here}}", "photo")
	assert.Empty(t, refs)
}

func TestFindContentRefs_UnparseableID(t *testing.T) {
	refs := FindContentRefs("{{photo not-a-uuid; text}}", "photo")
	assert.Empty(t, refs)
}

func TestFindContentRefs_TokenCaseInsensitive(t *testing.T) {
	id := uuid.New()
	text := fmt.Sprintf("{{PHOTO %s}}", id)

	refs := FindContentRefs(text, "photo")

	assert.Len(t, refs, 1)
	assert.Equal(t, id, refs[0].ContentID)
	assert.Equal(t, "", refs[0].DisplayText)
}

func TestFindPageRefs_EmptyDisplay(t *testing.T) {
	refs := FindPageRefs("{{SpecialTestToken;}}", "SpecialTestToken")

	assert.Len(t, refs, 1)
	assert.Equal(t, "", refs[0].DisplayText)
}

func TestFindPageRefs_TextLabelStripped(t *testing.T) {
	lower := FindPageRefs("{{SpecialTestToken; text X;}}", "specialtesttoken")
	upper := FindPageRefs("{{SpecialTestToken; Text X;}}", "specialtesttoken")

	assert.Len(t, lower, 1)
	assert.Len(t, upper, 1)
	assert.Equal(t, "X", lower[0].DisplayText)
	assert.Equal(t, "X", upper[0].DisplayText)
}

func TestFindPageRefs_DisplayPreservesCasing(t *testing.T) {
	refs := FindPageRefs("{{searchpage; text The BIG Search Page;}}", "SearchPage")

	assert.Len(t, refs, 1)
	assert.Equal(t, "The BIG Search Page", refs[0].DisplayText)
}

func TestFindPageRefs_IDSegmentIsNotAPageRef(t *testing.T) {
	text := fmt.Sprintf("{{photo %s; display}}", uuid.New())
	refs := FindPageRefs(text, "photo")
	assert.Empty(t, refs)
}

func TestFirstContentRefID_LeftMost(t *testing.T) {
	ids := make([]uuid.UUID, 5)
	text := "intro "
	for i := range ids {
		ids[i] = uuid.New()
		text += fmt.Sprintf("{{photo %s; picture %d}} ", ids[i], i)
	}

	id, ok := FirstContentRefID(text, "photo")

	assert.True(t, ok)
	assert.Equal(t, ids[0], id)
}

func TestFirstContentRefID_NoMatch(t *testing.T) {
	_, ok := FirstContentRefID("nothing to see", "photo")
	assert.False(t, ok)
}

func TestFindAllContentRefs_MixedTokens(t *testing.T) {
	photoID := uuid.New()
	postID := uuid.New()
	text := fmt.Sprintf("{{photo %s}} and {{postlink %s; a post}} and {{searchpage;}}", photoID, postID)

	refs := FindAllContentRefs(text)

	assert.Len(t, refs, 2)
	found := make(map[uuid.UUID]bool)
	for _, r := range refs {
		found[r.ContentID] = true
	}
	assert.True(t, found[photoID])
	assert.True(t, found[postID])
}

func TestSegments_UnclosedDelimiterIgnored(t *testing.T) {
	refs := FindContentRefs("{{photo "+uuid.NewString(), "photo")
	assert.Empty(t, refs)
}

func TestFindContentRefs_DisplayUpToSecondSemicolon(t *testing.T) {
	id := uuid.New()
	text := fmt.Sprintf("{{photo %s; June Hike; trailing noise}}", id)

	refs := FindContentRefs(text, "photo")

	assert.Len(t, refs, 1)
	assert.Equal(t, "June Hike", refs[0].DisplayText)
}
