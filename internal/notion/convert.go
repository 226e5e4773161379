package notion

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/starford/ledgr/internal/models"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// recordFromPage copies the property types the normalizer reads out of an
// API page. Other property types are dropped.
func recordFromPage(p *notionapi.Page) models.Record {
	rec := models.Record{
		Object:     string(p.Object),
		ID:         string(p.ID),
		Archived:   p.Archived,
		Properties: make(map[string]models.Property, len(p.Properties)),
	}
	if !p.CreatedTime.IsZero() {
		rec.CreatedTime = p.CreatedTime.UTC().Format(timestampLayout)
	}
	for name, prop := range p.Properties {
		if mp, ok := propertyFromAPI(prop); ok {
			rec.Properties[name] = mp
		}
	}
	return rec
}

func propertyFromAPI(prop notionapi.Property) (models.Property, bool) {
	switch v := prop.(type) {
	case *notionapi.TitleProperty:
		return models.Property{ID: string(v.ID), Type: models.PropertyTitle, Title: runsFromAPI(v.Title)}, true
	case *notionapi.RichTextProperty:
		return models.Property{ID: string(v.ID), Type: models.PropertyRichText, RichText: runsFromAPI(v.RichText)}, true
	case *notionapi.SelectProperty:
		mp := models.Property{ID: string(v.ID), Type: models.PropertySelect}
		if v.Select.Name != "" {
			mp.Select = optionFromAPI(v.Select)
		}
		return mp, true
	case *notionapi.StatusProperty:
		mp := models.Property{ID: string(v.ID), Type: models.PropertyStatus}
		if v.Status.Name != "" {
			mp.Status = optionFromAPI(notionapi.Option(v.Status))
		}
		return mp, true
	case *notionapi.MultiSelectProperty:
		opts := make([]models.SelectOption, len(v.MultiSelect))
		for i, o := range v.MultiSelect {
			opts[i] = *optionFromAPI(o)
		}
		return models.Property{ID: string(v.ID), Type: models.PropertyMultiSelect, MultiSelect: opts}, true
	case *notionapi.DateProperty:
		mp := models.Property{ID: string(v.ID), Type: models.PropertyDate}
		if v.Date != nil && v.Date.Start != nil {
			mp.Date = &models.DateValue{Start: formatDate(v.Date.Start)}
			if v.Date.End != nil {
				mp.Date.End = formatDate(v.Date.End)
			}
		}
		return mp, true
	case *notionapi.FilesProperty:
		files := make([]models.File, len(v.Files))
		for i, f := range v.Files {
			files[i] = models.File{
				Name:     f.Name,
				Type:     string(f.Type),
				File:     linkFromAPI(f.File),
				External: linkFromAPI(f.External),
			}
		}
		return models.Property{ID: string(v.ID), Type: models.PropertyFiles, Files: files}, true
	}
	return models.Property{}, false
}

func optionFromAPI(o notionapi.Option) *models.SelectOption {
	return &models.SelectOption{ID: string(o.ID), Name: o.Name, Color: string(o.Color)}
}

func linkFromAPI(f *notionapi.FileObject) *models.FileLink {
	if f == nil {
		return nil
	}
	return &models.FileLink{URL: f.URL}
}

// formatDate renders a date property value. A value without a time of
// day is a calendar date and keeps the short form.
func formatDate(d *notionapi.Date) string {
	t := time.Time(*d)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339)
}

func runsFromAPI(runs []notionapi.RichText) []models.RichText {
	if len(runs) == 0 {
		return nil
	}
	out := make([]models.RichText, len(runs))
	for i, r := range runs {
		out[i] = models.RichText{
			Type:      string(r.Type),
			PlainText: r.PlainText,
			Href:      r.Href,
		}
		if a := r.Annotations; a != nil {
			out[i].Annotations = models.Annotations{
				Bold:          a.Bold,
				Italic:        a.Italic,
				Strikethrough: a.Strikethrough,
				Underline:     a.Underline,
				Code:          a.Code,
			}
		}
	}
	return out
}
