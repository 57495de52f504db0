// Package bracket parses the embedded {{token ...}} reference syntax used
// within content body text. Parsing is pure text work: malformed codes are
// simply not matches, never errors.
package bracket

import (
	"strings"

	"github.com/google/uuid"
)

// ContentRef is one content-referencing bracket code occurrence:
// {{token content-id; display text}}.
type ContentRef struct {
	ContentID   uuid.UUID
	RawText     string
	DisplayText string
}

// PageRef is one page-referencing bracket code occurrence, citing a named
// non-content page rather than a content id: {{token; display text}}.
type PageRef struct {
	RawText     string
	DisplayText string
}

// ContentTokens lists every registered content-referencing token kind.
func ContentTokens() []string {
	return []string{
		"photo",
		"photolink",
		"image",
		"imagelink",
		"postlink",
		"notelink",
		"filelink",
		"filedownloadlink",
		"pointlink",
		"linelink",
		"geojsonlink",
		"mapcomponent",
		"video",
		"videolink",
	}
}

// PageTokens lists every registered page-referencing token kind.
func PageTokens() []string {
	return []string{
		"searchpage",
		"tagspage",
		"indexpage",
		"photogallerypage",
	}
}

// FindContentRefs returns every occurrence of {{token id; ...}} in text for
// the given token, matched case-insensitively. Each literal occurrence is
// returned exactly once; callers must not depend on relative ordering beyond
// that (use FirstContentRefID when left-most matters). A code with no id
// segment or an unparseable id is not a content ref and is skipped.
func FindContentRefs(text, token string) []ContentRef {
	var refs []ContentRef
	for _, seg := range segments(text) {
		if ref, ok := parseContentRef(seg, token); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// FindPageRefs returns every occurrence of {{token; ...}} in text for the
// given token, matched case-insensitively. A code carrying an id segment is
// not a page ref.
func FindPageRefs(text, token string) []PageRef {
	var refs []PageRef
	for _, seg := range segments(text) {
		if ref, ok := parsePageRef(seg, token); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// FirstContentRefID returns the content id of the left-most (lowest string
// offset) occurrence of the token in text. The left-most guarantee is a hard
// contract; callers use it to pick e.g. a post's main picture.
func FirstContentRefID(text, token string) (uuid.UUID, bool) {
	for _, seg := range segments(text) {
		if ref, ok := parseContentRef(seg, token); ok {
			return ref.ContentID, true
		}
	}
	return uuid.Nil, false
}

// FindAllContentRefs returns content refs for every registered content token.
func FindAllContentRefs(text string) []ContentRef {
	var refs []ContentRef
	for _, seg := range segments(text) {
		for _, token := range ContentTokens() {
			if ref, ok := parseContentRef(seg, token); ok {
				refs = append(refs, ref)
				break
			}
		}
	}
	return refs
}

// segment is one {{...}} literal found in the source text.
type segment struct {
	raw   string // including delimiters
	inner string // between delimiters
}

// segments scans for non-overlapping {{ / }} delimiter pairs in string
// order. Back-to-back codes with zero separating characters each produce
// their own segment; there is no greedy over-consumption because the scan
// resumes immediately after each closing delimiter.
func segments(text string) []segment {
	var segs []segment
	i := 0
	for {
		start := strings.Index(text[i:], "{{")
		if start < 0 {
			return segs
		}
		start += i
		end := strings.Index(text[start+2:], "}}")
		if end < 0 {
			return segs
		}
		end += start + 2
		segs = append(segs, segment{
			raw:   text[start : end+2],
			inner: text[start+2 : end],
		})
		i = end + 2
	}
}

// splitToken splits the segment interior into the token word and the
// remainder. The token is the first whitespace-delimited word, minus any
// trailing ';'; the remainder keeps that ';' so display parsing sees it.
func splitToken(inner string) (token, rest string) {
	inner = strings.TrimLeft(inner, " \t\r\n")
	end := strings.IndexAny(inner, " \t\r\n;")
	if end < 0 {
		return inner, ""
	}
	return inner[:end], inner[end:]
}

// displayText extracts the display segment from rest. A leading ';' denotes
// an explicit (possibly empty) display segment running to an optional second
// ';' or the end of the code. The original syntax allows an explicit "text"
// label before the display value; the label is stripped and the remainder
// keeps its original casing. No ';' at all means the display text is empty.
func displayText(rest string) string {
	rest = strings.TrimLeft(rest, " \t\r\n")
	if !strings.HasPrefix(rest, ";") {
		return ""
	}
	seg := rest[1:]
	if j := strings.Index(seg, ";"); j >= 0 {
		seg = seg[:j]
	}
	seg = strings.TrimSpace(seg)
	if len(seg) > 4 && strings.EqualFold(seg[:4], "text") && isSpace(seg[4]) {
		seg = strings.TrimSpace(seg[5:])
	}
	return seg
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func parseContentRef(seg segment, token string) (ContentRef, bool) {
	word, rest := splitToken(seg.inner)
	if !strings.EqualFold(word, token) {
		return ContentRef{}, false
	}
	rest = strings.TrimLeft(rest, " \t\r\n")
	if rest == "" || strings.HasPrefix(rest, ";") {
		// No id segment: not a content ref.
		return ContentRef{}, false
	}
	idWord := rest
	afterID := ""
	if end := strings.IndexAny(rest, " \t\r\n;"); end >= 0 {
		idWord = rest[:end]
		afterID = rest[end:]
	}
	id, err := uuid.Parse(idWord)
	if err != nil {
		return ContentRef{}, false
	}
	return ContentRef{
		ContentID:   id,
		RawText:     seg.raw,
		DisplayText: displayText(afterID),
	}, true
}

func parsePageRef(seg segment, token string) (PageRef, bool) {
	word, rest := splitToken(seg.inner)
	if !strings.EqualFold(word, token) {
		return PageRef{}, false
	}
	trimmed := strings.TrimLeft(rest, " \t\r\n")
	if trimmed != "" && !strings.HasPrefix(trimmed, ";") {
		// An id segment makes this a content ref, not a page ref.
		return PageRef{}, false
	}
	return PageRef{
		RawText:     seg.raw,
		DisplayText: displayText(rest),
	}, true
}
