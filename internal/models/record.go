// Package models defines the domain types for Ledgr.
package models

// Property types as reported by the document store.
const (
	PropertyTitle       = "title"
	PropertyRichText    = "rich_text"
	PropertySelect      = "select"
	PropertyMultiSelect = "multi_select"
	PropertyStatus      = "status"
	PropertyDate        = "date"
	PropertyFiles       = "files"
)

// Record is one page object delivered by the document store, either as an
// item of a database query or as a single page fetch. It is read-only and
// lives for the duration of one request.
type Record struct {
	Object      string              `json:"object,omitempty"`
	ID          string              `json:"id"`
	CreatedTime string              `json:"created_time,omitempty"`
	Archived    bool                `json:"archived,omitempty"`
	Properties  map[string]Property `json:"properties"`
}

// Property is a typed value wrapper. Only the field matching Type is
// populated; the rest stay at their zero value.
type Property struct {
	ID          string         `json:"id,omitempty"`
	Type        string         `json:"type"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Status      *SelectOption  `json:"status,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
	Files       []File         `json:"files,omitempty"`
}

// RichText is a single styled text run.
type RichText struct {
	Type        string      `json:"type,omitempty"`
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
	Annotations Annotations `json:"annotations"`
}

// Annotations are the inline styles of a rich text run.
type Annotations struct {
	Bold          bool `json:"bold,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
	Underline     bool `json:"underline,omitempty"`
	Code          bool `json:"code,omitempty"`
}

// SelectOption is a select, multi-select or status choice.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DateValue is a date or date range.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// File is an attachment. Hosted files carry File, linked files carry External.
type File struct {
	Name     string    `json:"name,omitempty"`
	Type     string    `json:"type,omitempty"`
	File     *FileLink `json:"file,omitempty"`
	External *FileLink `json:"external,omitempty"`
}

// FileLink holds an attachment URL.
type FileLink struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

// Prop returns the property stored under name.
func (r *Record) Prop(name string) (Property, bool) {
	if r == nil || r.Properties == nil {
		return Property{}, false
	}
	p, ok := r.Properties[name]
	return p, ok
}

// FirstText returns the plain text of the first run, or "".
func FirstText(runs []RichText) string {
	if len(runs) == 0 {
		return ""
	}
	return runs[0].PlainText
}
