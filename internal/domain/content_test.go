package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentKind_Valid(t *testing.T) {
	for _, kind := range AllKinds() {
		assert.True(t, kind.Valid(), "kind %s", kind)
	}
	assert.False(t, ContentKind("widget").Valid())
	assert.False(t, ContentKind("").Valid())
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"lowercases", []string{"Hiking", "ALPS"}, "alps,hiking"},
		{"trims and collapses spaces", []string{"  south   tyrol "}, "south tyrol"},
		{"dedupes after normalizing", []string{"Alps", "alps", " ALPS"}, "alps"},
		{"drops empties", []string{"", "  ", "alps"}, "alps"},
		{"sorted output", []string{"zebra", "alps", "mid"}, "alps,mid,zebra"},
		{"all empty", []string{"", " "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"alps", "hiking"}, SplitTags("Hiking, alps"))
	assert.Nil(t, SplitTags(""))
}

func TestContentItem_TagList(t *testing.T) {
	item := &ContentItem{Tags: "alps,hiking"}
	assert.Equal(t, []string{"alps", "hiking"}, item.TagList())

	empty := &ContentItem{}
	assert.Nil(t, empty.TagList())
}

func TestContentItem_ReferenceText(t *testing.T) {
	post := &ContentItem{Kind: KindPost, BodyText: "body", UpdateNotesText: "notes"}
	assert.Equal(t, "body\nnotes", post.ReferenceText())

	noNotes := &ContentItem{Kind: KindPhoto, BodyText: "body"}
	assert.Equal(t, "body", noNotes.ReferenceText())
}
