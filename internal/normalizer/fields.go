package normalizer

import (
	"fmt"
	"strings"

	"github.com/starford/ledgr/internal/models"
)

// Property keys. The database has been edited by several authors over time,
// so most fields exist under a primary key and a historical alias.
const (
	KeyTitle          = "제목"
	KeyTitleAlias     = "Title"
	KeyCategory       = "카테고리"
	KeyCategoryAlias  = "Category"
	KeySource         = "소스"
	KeySourceAlias    = "Source"
	KeyBrand          = "Brand"
	KeyBrandAlias     = "브랜드"
	KeyDate           = "Date"
	KeyThumbnail      = "썸네일"
	KeyThumbnailAlias = "Thumbnail"
	KeySummary        = "시분석"
)

// AnalysisKeys are the keys the AI analysis text has been stored under,
// in lookup order.
var AnalysisKeys = []string{"AI 분석", "시분석", "AI Analysis", "Analysis"}

// Sentinels substituted for absent fields.
const (
	UntitledList       = "Untitled"
	UntitledDetail     = "제목 없음"
	DefaultCategory    = "General"
	BrandListDefault   = "Tech Startup"
	BrandDetailDefault = "Micro Hunter Analysis"
	DateUnknownList    = "날짜 미정"
	DateUnknownDetail  = "Unknown Date"
	EmptyBody          = "내용이 없습니다."
)

// View selects call-site specific defaults.
type View int

// Views.
const (
	ViewList View = iota
	ViewDetail
)

func (v View) String() string {
	if v == ViewDetail {
		return "detail"
	}
	return "list"
}

// Schema names the source schema variant a resolution step reads from.
type Schema int

// Schema variants.
const (
	SchemaPrimary Schema = iota
	SchemaAlias
	SchemaSource
	SchemaSystem
	SchemaExternal
	SchemaFallback
)

func (s Schema) String() string {
	switch s {
	case SchemaPrimary:
		return "primary"
	case SchemaAlias:
		return "alias"
	case SchemaSource:
		return "source"
	case SchemaSystem:
		return "system"
	case SchemaExternal:
		return "external"
	default:
		return "fallback"
	}
}

// Input is what a step may read: the record and, on the detail view, the
// separately converted document body.
type Input struct {
	Record *models.Record
	Body   string
}

// Step is one attempt in a field's resolution chain.
//
// A property step owns a property set: it selects the first key of Keys
// that exists on the record and reads only that property. A later key is
// never consulted once an earlier one exists, even when the earlier
// property holds no usable value.
type Step struct {
	Schema  Schema
	Keys    []string
	Kind    string
	resolve func(Input) (value, key string, ok bool)
}

// String renders the step as schema:keys/kind, e.g.
// "primary:카테고리|Category/select".
func (s Step) String() string {
	if len(s.Keys) == 0 {
		return s.Schema.String()
	}
	return fmt.Sprintf("%s:%s/%s", s.Schema, strings.Join(s.Keys, "|"), s.Kind)
}

// Resolve runs the step against in.
func (s Step) Resolve(in Input) (string, bool) {
	v, _, ok := s.resolve(in)
	return v, ok
}

// Source identifies where a resolved value came from.
type Source struct {
	Schema Schema
	Key    string
	Kind   string
}

// String renders the source as schema:key/kind, e.g. "alias:Category/select".
func (s Source) String() string {
	if s.Key == "" {
		return s.Schema.String()
	}
	return fmt.Sprintf("%s:%s/%s", s.Schema, s.Key, s.Kind)
}

// Chain is an ordered list of steps; the first that resolves wins.
type Chain []Step

// Resolve returns the first resolved value, or "" when nothing resolves.
func (c Chain) Resolve(in Input) string {
	v, _ := c.Trace(in)
	return v
}

// Trace returns the resolved value and where it came from. A value read
// through a later key of a primary property set is reported as an alias.
func (c Chain) Trace(in Input) (string, Source) {
	for _, s := range c {
		v, key, ok := s.resolve(in)
		if !ok {
			continue
		}
		src := Source{Schema: s.Schema, Key: key, Kind: s.Kind}
		if s.Schema == SchemaPrimary && len(s.Keys) > 0 && key != s.Keys[0] {
			src.Schema = SchemaAlias
		}
		return v, src
	}
	return "", Source{Schema: SchemaFallback}
}

// TitleChain resolves the article title.
func TitleChain(v View) Chain {
	sentinel := UntitledList
	if v == ViewDetail {
		sentinel = UntitledDetail
	}
	return Chain{
		propStep(SchemaPrimary, models.PropertyTitle, titleValue, KeyTitle, KeyTitleAlias),
		fallback(sentinel),
	}
}

// CategoryChain resolves the article category. It is the same on both views.
// The category set is read first, then the source set as multi-select and
// finally the source set as select.
func CategoryChain() Chain {
	return Chain{
		propStep(SchemaPrimary, models.PropertySelect, selectValue, KeyCategory, KeyCategoryAlias),
		propStep(SchemaSource, models.PropertyMultiSelect, multiSelectValue, KeySource, KeySourceAlias),
		propStep(SchemaSource, models.PropertySelect, selectValue, KeySource, KeySourceAlias),
		fallback(DefaultCategory),
	}
}

// BrandChain resolves the brand. The two views keep distinct defaults.
func BrandChain(v View) Chain {
	sentinel := BrandListDefault
	if v == ViewDetail {
		sentinel = BrandDetailDefault
	}
	return Chain{
		propStep(SchemaPrimary, models.PropertyRichText, richTextValue, KeyBrand, KeyBrandAlias),
		fallback(sentinel),
	}
}

// DateChain resolves the display date.
func DateChain(v View) Chain {
	sentinel := DateUnknownList
	if v == ViewDetail {
		sentinel = DateUnknownDetail
	}
	return Chain{
		propStep(SchemaPrimary, models.PropertyDate, dateValue, KeyDate),
		{
			Schema: SchemaSystem, Keys: []string{"created_time"}, Kind: "timestamp",
			resolve: func(in Input) (string, string, bool) {
				if in.Record == nil || in.Record.CreatedTime == "" {
					return "", "", false
				}
				ts := in.Record.CreatedTime
				if len(ts) > 10 {
					ts = ts[:10]
				}
				return ts, "created_time", true
			},
		},
		fallback(sentinel),
	}
}

// DescriptionChain resolves the short summary shown on list cards.
func DescriptionChain() Chain {
	return Chain{
		propStep(SchemaPrimary, models.PropertyRichText, richTextValue, KeySummary),
		fallback(""),
	}
}

// ImageChain resolves the thumbnail URL. It has no sentinel: an empty result
// means there is no thumbnail.
func ImageChain() Chain {
	return Chain{
		propStep(SchemaPrimary, models.PropertyFiles, fileValue, KeyThumbnail, KeyThumbnailAlias),
	}
}

// BodyChain resolves the long-form body on the detail view. The analysis
// keys form one property set: an empty analysis property falls through to
// the converted body, not to the next analysis key.
func BodyChain() Chain {
	return Chain{
		propStep(SchemaPrimary, models.PropertyRichText, analysisValue, AnalysisKeys...),
		{
			Schema: SchemaExternal, Keys: []string{"body"}, Kind: "markdown",
			resolve: func(in Input) (string, string, bool) {
				if strings.TrimSpace(in.Body) == "" {
					return "", "", false
				}
				return in.Body, "body", true
			},
		},
		fallback(EmptyBody),
	}
}

func fallback(value string) Step {
	return Step{
		Schema:  SchemaFallback,
		resolve: func(Input) (string, string, bool) { return value, "", true },
	}
}

// propStep builds a step over a property set. read extracts the value from
// the selected property.
func propStep(schema Schema, kind string, read func(models.Property) (string, bool), keys ...string) Step {
	return Step{
		Schema: schema, Keys: keys, Kind: kind,
		resolve: func(in Input) (string, string, bool) {
			for _, key := range keys {
				p, ok := in.Record.Prop(key)
				if !ok {
					continue
				}
				v, ok := read(p)
				return v, key, ok
			}
			return "", "", false
		},
	}
}

func titleValue(p models.Property) (string, bool) {
	t := models.FirstText(p.Title)
	return t, t != ""
}

func richTextValue(p models.Property) (string, bool) {
	t := models.FirstText(p.RichText)
	return t, t != ""
}

func selectValue(p models.Property) (string, bool) {
	if p.Select == nil || p.Select.Name == "" {
		return "", false
	}
	return p.Select.Name, true
}

func multiSelectValue(p models.Property) (string, bool) {
	if len(p.MultiSelect) == 0 || p.MultiSelect[0].Name == "" {
		return "", false
	}
	return p.MultiSelect[0].Name, true
}

func dateValue(p models.Property) (string, bool) {
	if p.Date == nil || p.Date.Start == "" {
		return "", false
	}
	return p.Date.Start, true
}

// fileValue returns the first file's hosted URL, else its external URL.
func fileValue(p models.Property) (string, bool) {
	if len(p.Files) == 0 {
		return "", false
	}
	f := p.Files[0]
	if f.File != nil && f.File.URL != "" {
		return f.File.URL, true
	}
	if f.External != nil && f.External.URL != "" {
		return f.External.URL, true
	}
	return "", false
}

// analysisValue joins every run of the property with newlines.
func analysisValue(p models.Property) (string, bool) {
	if len(p.RichText) == 0 {
		return "", false
	}
	parts := make([]string, len(p.RichText))
	for i, run := range p.RichText {
		parts[i] = run.PlainText
	}
	text := strings.Join(parts, "\n")
	return text, text != ""
}
