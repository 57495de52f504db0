package render

import (
	"bytes"
	"html/template"
	"time"

	"github.com/waymarker/waymarker-backend/internal/bracket"
	"github.com/waymarker/waymarker-backend/internal/domain"
)

// HTMLRenderer is the built-in minimal renderer. Site themes replace it via
// the Renderer interface; it exists so the engine, the CLI and the tests have
// a complete default.
type HTMLRenderer struct {
	siteName string
	tmpl     *template.Template
}

// NewHTMLRenderer creates an HTMLRenderer for the named site.
func NewHTMLRenderer(siteName string) *HTMLRenderer {
	return &HTMLRenderer{
		siteName: siteName,
		tmpl:     template.Must(template.New("page").Parse(pageTemplate)),
	}
}

type pageData struct {
	SiteName    string
	Title       string
	MainPicture string
	Summary     string
	Body        string
	Tags        []string
	Items       []*domain.ContentItem
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<title>{{.Title}} - {{.SiteName}}</title>
{{if .MainPicture}}<meta name="main-picture" content="{{.MainPicture}}">{{end}}
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Summary}}<p>{{.Summary}}</p>{{end}}
{{if .Body}}<div class="body">{{.Body}}</div>{{end}}
{{if .Tags}}<ul class="tags">{{range .Tags}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Items}}<ul class="items">{{range .Items}}<li><a href="/{{.Folder}}/{{.Slug}}.html">{{.Title}}</a></li>{{end}}</ul>{{end}}
</body>
</html>
`

// RenderContent renders one content item. For posts the left-most photo or
// image reference in the body is recorded as the main picture.
func (r *HTMLRenderer) RenderContent(item *domain.ContentItem) ([]byte, error) {
	data := pageData{
		SiteName: r.siteName,
		Title:    item.Title,
		Summary:  item.Summary,
		Body:     item.BodyText,
		Tags:     item.TagList(),
	}
	if item.Kind == domain.KindPost {
		if id, ok := bracket.FirstContentRefID(item.BodyText, "photo"); ok {
			data.MainPicture = id.String()
		} else if id, ok := bracket.FirstContentRefID(item.BodyText, "image"); ok {
			data.MainPicture = id.String()
		}
	}
	return r.execute(data)
}

// RenderTagPage renders one tag listing page. Excluded tags are titled as
// plain text only; members still list.
func (r *HTMLRenderer) RenderTagPage(tag string, excluded bool, items []*domain.ContentItem) ([]byte, error) {
	title := "Tag: " + tag
	if excluded {
		title = tag
	}
	return r.execute(pageData{
		SiteName: r.siteName,
		Title:    title,
		Items:    items,
	})
}

// RenderDailyPage renders the rollup page for one day.
func (r *HTMLRenderer) RenderDailyPage(day time.Time, items []*domain.ContentItem) ([]byte, error) {
	return r.execute(pageData{
		SiteName: r.siteName,
		Title:    day.Format("2006-01-02"),
		Items:    items,
	})
}

// RenderIndexPage renders the all-content index.
func (r *HTMLRenderer) RenderIndexPage(items []*domain.ContentItem) ([]byte, error) {
	return r.execute(pageData{
		SiteName: r.siteName,
		Title:    "All Content",
		Items:    items,
	})
}

func (r *HTMLRenderer) execute(data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
