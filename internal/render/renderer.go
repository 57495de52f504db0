// Package render turns content items and listing views into output
// artifacts, and owns the artifact store those outputs live in. Real site
// templating, image resizing and map work belong to external collaborators;
// the engine needs bytes plus the two version stamps.
package render

import (
	"time"

	"github.com/waymarker/waymarker-backend/internal/domain"
)

// Renderer produces the body bytes for one output artifact.
type Renderer interface {
	RenderContent(item *domain.ContentItem) ([]byte, error)
	RenderTagPage(tag string, excluded bool, items []*domain.ContentItem) ([]byte, error)
	RenderDailyPage(day time.Time, items []*domain.ContentItem) ([]byte, error)
	RenderIndexPage(items []*domain.ContentItem) ([]byte, error)
}

// ContentPath is the artifact path for a content item.
func ContentPath(item *domain.ContentItem) string {
	return item.Folder + "/" + item.Slug + ".html"
}

// TagPath is the artifact path for a tag listing page.
func TagPath(tag string) string {
	return "tags/" + tagSlug(tag) + ".html"
}

// DailyPath is the artifact path for a daily rollup page.
func DailyPath(day time.Time) string {
	return "daily/" + day.Format("2006-01-02") + ".html"
}

// IndexPath is the artifact path for the all-content index.
const IndexPath = "index.html"

func tagSlug(tag string) string {
	out := make([]byte, 0, len(tag))
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out = append(out, c)
		case c == ' ' || c == '-' || c == '_':
			out = append(out, '-')
		}
	}
	return string(out)
}
