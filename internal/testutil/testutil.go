// Package testutil provides shared test helpers for building records and
// export directories.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ledgr/internal/models"
)

// Record builds a page record.
func Record(id, createdTime string, props map[string]models.Property) models.Record {
	if props == nil {
		props = map[string]models.Property{}
	}
	return models.Record{Object: "page", ID: id, CreatedTime: createdTime, Properties: props}
}

func runs(texts []string) []models.RichText {
	out := make([]models.RichText, len(texts))
	for i, t := range texts {
		out[i] = models.RichText{Type: "text", PlainText: t}
	}
	return out
}

// TitleProp builds a title property.
func TitleProp(texts ...string) models.Property {
	return models.Property{Type: models.PropertyTitle, Title: runs(texts)}
}

// TextProp builds a rich text property with one run per text.
func TextProp(texts ...string) models.Property {
	return models.Property{Type: models.PropertyRichText, RichText: runs(texts)}
}

// SelectProp builds a select property.
func SelectProp(name string) models.Property {
	return models.Property{Type: models.PropertySelect, Select: &models.SelectOption{Name: name}}
}

// MultiSelectProp builds a multi-select property.
func MultiSelectProp(names ...string) models.Property {
	opts := make([]models.SelectOption, len(names))
	for i, n := range names {
		opts[i] = models.SelectOption{Name: n}
	}
	return models.Property{Type: models.PropertyMultiSelect, MultiSelect: opts}
}

// StatusProp builds a status property.
func StatusProp(name string) models.Property {
	return models.Property{Type: models.PropertyStatus, Status: &models.SelectOption{Name: name}}
}

// DateProp builds a date property.
func DateProp(start string) models.Property {
	return models.Property{Type: models.PropertyDate, Date: &models.DateValue{Start: start}}
}

// HostedFileProp builds a files property with one hosted file.
func HostedFileProp(url string) models.Property {
	return models.Property{Type: models.PropertyFiles, Files: []models.File{
		{Type: "file", File: &models.FileLink{URL: url}},
	}}
}

// ExternalFileProp builds a files property with one external link.
func ExternalFileProp(url string) models.Property {
	return models.Property{Type: models.PropertyFiles, Files: []models.File{
		{Type: "external", External: &models.FileLink{URL: url}},
	}}
}

// Published builds a record with the given title that passes the default
// publication filter.
func Published(id, createdTime, title string) models.Record {
	return Record(id, createdTime, map[string]models.Property{
		"제목":     TitleProp(title),
		"Status": StatusProp("발행하기"),
	})
}

// ExportDir creates a temporary export directory holding recs and the
// optional converted bodies keyed by record ID.
func ExportDir(t *testing.T, recs []models.Record, bodies map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for _, r := range recs {
		WritePage(t, dir, r)
	}
	for id, body := range bodies {
		WriteBody(t, dir, id, body)
	}
	return dir
}

// WritePage writes rec as pages/<id>.json under dir.
func WritePage(t *testing.T, dir string, rec models.Record) {
	t.Helper()
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "pages", rec.ID+".json"), data)
}

// WriteBody writes body as pages/<id>.md under dir.
func WriteBody(t *testing.T, dir, id, body string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "pages", id+".md"), []byte(body))
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
