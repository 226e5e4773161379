// Package normalizer maps raw document-store records onto the canonical
// Article model.
//
// Every field is resolved through an explicit Chain of steps (see fields.go).
// Normalization is total: missing or malformed properties degrade to the
// field's sentinel and never produce an error.
package normalizer

import "github.com/starford/ledgr/internal/models"

// NormalizeListItem builds the Article shown on a list card.
func NormalizeListItem(rec *models.Record) models.Article {
	return Normalize(rec, ViewList, "")
}

// NormalizeDetail builds the Article for a detail page. body is the
// separately converted document body and may be empty.
func NormalizeDetail(rec *models.Record, body string) models.Article {
	return Normalize(rec, ViewDetail, body)
}

// NormalizeAll normalizes a query result for the list view, keeping order.
func NormalizeAll(recs []models.Record) []models.Article {
	out := make([]models.Article, len(recs))
	for i := range recs {
		out[i] = NormalizeListItem(&recs[i])
	}
	return out
}

// Normalize builds an Article for the given view. BodyRaw is only resolved
// on the detail view.
func Normalize(rec *models.Record, view View, body string) models.Article {
	in := Input{Record: rec, Body: body}

	a := models.Article{
		Title:       TitleChain(view).Resolve(in),
		Category:    CategoryChain().Resolve(in),
		Brand:       BrandChain(view).Resolve(in),
		Date:        DateChain(view).Resolve(in),
		Description: DescriptionChain().Resolve(in),
	}
	if rec != nil {
		a.ID = rec.ID
	}
	if u := ImageChain().Resolve(in); u != "" {
		a.ImageURL = &u
	}
	if view == ViewDetail {
		a.BodyRaw = BodyChain().Resolve(in)
	}
	return a
}

// Explain reports, per field, which property produced the value. It is used for
// diagnosing schema drift in the source database.
func Explain(rec *models.Record, view View, body string) map[string]string {
	in := Input{Record: rec, Body: body}
	chains := map[string]Chain{
		"title":       TitleChain(view),
		"category":    CategoryChain(),
		"brand":       BrandChain(view),
		"date":        DateChain(view),
		"description": DescriptionChain(),
		"image_url":   ImageChain(),
	}
	if view == ViewDetail {
		chains["body_raw"] = BodyChain()
	}
	out := make(map[string]string, len(chains))
	for field, c := range chains {
		_, src := c.Trace(in)
		out[field] = src.String()
	}
	return out
}
