package gallery

import (
	"bytes"
	"fmt"
	"html/template"
)

var cardsTemplate = template.Must(template.New("cards").Parse(`{{range .}}
<div class="photo-card">
  <a href="{{.FullSizeURL}}">
    <img src="{{.ThumbnailURL}}" alt="{{.Alt}}" loading="lazy" />
  </a>
  <div class="info">
    <p class="info-item"><b>Likes</b> {{.Likes}}</p>
    <p class="info-item"><b>Views</b> {{.Views}}</p>
    <p class="info-item"><b>Comments</b> {{.Comments}}</p>
    <p class="info-item"><b>Downloads</b> {{.Downloads}}</p>
  </div>
</div>{{end}}`))

// RenderCards renders entries as .photo-card markup. Field values are HTML-escaped.
func RenderCards(entries []Entry) (template.HTML, error) {
	var buf bytes.Buffer
	if err := cardsTemplate.Execute(&buf, entries); err != nil {
		return "", fmt.Errorf("render cards: %w", err)
	}
	return template.HTML(buf.String()), nil
}
