package normalizer

import (
	"strings"
	"testing"

	"github.com/starford/ledgr/internal/models"
	"github.com/starford/ledgr/internal/testutil"
)

func props(kv ...any) map[string]models.Property {
	out := make(map[string]models.Property, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i].(string)] = kv[i+1].(models.Property)
	}
	return out
}

func TestNormalizeListItem_FullRecord(t *testing.T) {
	rec := testutil.Record("page-1", "2024-03-05T10:00:00.000Z", props(
		KeyTitle, testutil.TitleProp("Hello", "ignored"),
		KeyCategory, testutil.SelectProp("디자인"),
		KeyBrand, testutil.TextProp("Acme"),
		KeyDate, testutil.DateProp("2024-02-01"),
		KeySummary, testutil.TextProp("short summary", "second run"),
		KeyThumbnail, testutil.HostedFileProp("https://files.example/a.png"),
	))

	a := NormalizeListItem(&rec)
	if a.ID != "page-1" {
		t.Errorf("id = %q", a.ID)
	}
	if a.Title != "Hello" {
		t.Errorf("title = %q, want Hello", a.Title)
	}
	if a.Category != "디자인" {
		t.Errorf("category = %q", a.Category)
	}
	if a.Brand != "Acme" {
		t.Errorf("brand = %q", a.Brand)
	}
	if a.Date != "2024-02-01" {
		t.Errorf("date = %q", a.Date)
	}
	if a.Description != "short summary" {
		t.Errorf("description = %q", a.Description)
	}
	if a.ImageURL == nil || *a.ImageURL != "https://files.example/a.png" {
		t.Errorf("image_url = %v", a.ImageURL)
	}
	if a.BodyRaw != "" {
		t.Errorf("list view must not resolve body, got %q", a.BodyRaw)
	}
}

func TestNormalize_EmptyRecordUsesSentinels(t *testing.T) {
	rec := testutil.Record("p", "", nil)

	list := NormalizeListItem(&rec)
	if list.Title != UntitledList || list.Category != DefaultCategory ||
		list.Brand != BrandListDefault || list.Date != DateUnknownList {
		t.Errorf("list sentinels = %+v", list)
	}
	if list.ImageURL != nil {
		t.Errorf("image_url = %v, want nil", *list.ImageURL)
	}

	detail := NormalizeDetail(&rec, "")
	if detail.Title != UntitledDetail || detail.Category != DefaultCategory ||
		detail.Brand != BrandDetailDefault || detail.Date != DateUnknownDetail {
		t.Errorf("detail sentinels = %+v", detail)
	}
	if detail.BodyRaw != EmptyBody {
		t.Errorf("body = %q, want %q", detail.BodyRaw, EmptyBody)
	}
}

func TestNormalize_NilRecord(t *testing.T) {
	a := Normalize(nil, ViewDetail, "")
	if a.Title == "" || a.Category == "" || a.Brand == "" || a.Date == "" {
		t.Errorf("nil record produced empty field: %+v", a)
	}
}

func TestNormalize_UIFieldsNeverEmpty(t *testing.T) {
	cases := []map[string]models.Property{
		nil,
		props(KeyTitle, testutil.TitleProp()),
		props(KeyTitle, testutil.TitleProp("")),
		props(KeyCategory, models.Property{Type: models.PropertySelect}),
		props(KeySource, testutil.MultiSelectProp()),
		props(KeyBrand, testutil.TextProp("")),
		props(KeyDate, models.Property{Type: models.PropertyDate}),
		props(KeyThumbnail, models.Property{Type: models.PropertyFiles}),
	}
	for i, p := range cases {
		rec := testutil.Record("id", "", p)
		for _, view := range []View{ViewList, ViewDetail} {
			a := Normalize(&rec, view, "")
			if a.Title == "" || a.Category == "" || a.Brand == "" || a.Date == "" {
				t.Errorf("case %d (%s): empty field in %+v", i, view, a)
			}
		}
	}
}

func TestCategory_PrimaryKeyWinsOverAlias(t *testing.T) {
	// Alias inserted first; precedence comes from the chain, not map order.
	rec := testutil.Record("p", "", props(
		KeyCategoryAlias, testutil.SelectProp("Tech"),
		KeyCategory, testutil.SelectProp("디자인"),
	))
	if got := NormalizeListItem(&rec).Category; got != "디자인" {
		t.Errorf("category = %q, want 디자인", got)
	}
}

func TestCategory_FallbackOrder(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]models.Property
		want  string
	}{
		{"alias select", props(KeyCategoryAlias, testutil.SelectProp("Growth")), "Growth"},
		{"source multi-select", props(
			KeySource, testutil.MultiSelectProp("스타트업", "기획"),
		), "스타트업"},
		{"source multi-select beats source select", props(
			KeySource, testutil.MultiSelectProp("multi-value"),
		), "multi-value"},
		{"present source key shadows its alias", props(
			KeySource, testutil.SelectProp("소스-select"),
			KeySourceAlias, testutil.MultiSelectProp("Source-multi"),
		), "소스-select"},
		{"empty category falls through to source", props(
			KeyCategory, testutil.SelectProp(""),
			KeyCategoryAlias, testutil.SelectProp("shadowed"),
			KeySource, testutil.MultiSelectProp("from-source"),
		), "from-source"},
		{"source select", props(KeySourceAlias, testutil.SelectProp("PM")), "PM"},
		{"category beats source", props(
			KeySource, testutil.MultiSelectProp("source"),
			KeyCategoryAlias, testutil.SelectProp("category"),
		), "category"},
		{"nothing", nil, DefaultCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Record("p", "", tt.props)
			if got := NormalizeListItem(&rec).Category; got != tt.want {
				t.Errorf("category = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBrand_DistinctDefaultsPerView(t *testing.T) {
	rec := testutil.Record("p", "", nil)
	if got := NormalizeListItem(&rec).Brand; got != "Tech Startup" {
		t.Errorf("list brand = %q", got)
	}
	if got := NormalizeDetail(&rec, "").Brand; got != "Micro Hunter Analysis" {
		t.Errorf("detail brand = %q", got)
	}

	rec = testutil.Record("p", "", props(
		KeyBrandAlias, testutil.TextProp("브랜드값"),
		KeyBrand, testutil.TextProp("BrandValue"),
	))
	if got := NormalizeListItem(&rec).Brand; got != "BrandValue" {
		t.Errorf("brand = %q, want BrandValue", got)
	}
}

func TestDate_CreatedTimeFallback(t *testing.T) {
	rec := testutil.Record("p", "2024-03-05T10:00:00Z", nil)
	if got := NormalizeListItem(&rec).Date; got != "2024-03-05" {
		t.Errorf("date = %q, want 2024-03-05", got)
	}
	if got := NormalizeDetail(&rec, "").Date; got != "2024-03-05" {
		t.Errorf("detail date = %q, want 2024-03-05", got)
	}

	short := testutil.Record("p", "2024-03", nil)
	if got := NormalizeListItem(&short).Date; got != "2024-03" {
		t.Errorf("short timestamp date = %q", got)
	}
}

func TestImage_ExternalFallback(t *testing.T) {
	rec := testutil.Record("p", "", props(
		KeyThumbnailAlias, testutil.ExternalFileProp("https://cdn.example/b.jpg"),
	))
	a := NormalizeListItem(&rec)
	if a.ImageURL == nil || *a.ImageURL != "https://cdn.example/b.jpg" {
		t.Errorf("image_url = %v", a.ImageURL)
	}
}

func TestBody_AnalysisJoinedAcrossRuns(t *testing.T) {
	rec := testutil.Record("p", "", props(
		"AI Analysis", testutil.TextProp("later alias"),
		"AI 분석", testutil.TextProp("## Intro", "line two"),
	))
	a := NormalizeDetail(&rec, "converted body")
	if a.BodyRaw != "## Intro\nline two" {
		t.Errorf("body = %q", a.BodyRaw)
	}
}

func TestBody_EmptyAnalysisShadowsLaterKeys(t *testing.T) {
	rec := testutil.Record("p", "", props(
		"AI 분석", testutil.TextProp(),
		"시분석", testutil.TextProp("summary"),
	))
	if got := NormalizeDetail(&rec, "converted body").BodyRaw; got != "converted body" {
		t.Errorf("body = %q, want converted body", got)
	}
	if got := Explain(&rec, ViewDetail, "converted body")["body_raw"]; got != "external:body/markdown" {
		t.Errorf("body step = %q", got)
	}
}

func TestTitle_AliasReportedAsAlias(t *testing.T) {
	rec := testutil.Record("p", "", props(KeyTitleAlias, testutil.TitleProp("Hello")))
	if got := NormalizeListItem(&rec).Title; got != "Hello" {
		t.Errorf("title = %q", got)
	}
	if got := Explain(&rec, ViewList, "")["title"]; got != "alias:Title/title" {
		t.Errorf("title step = %q", got)
	}
}

func TestBody_ConvertedBodyFallback(t *testing.T) {
	rec := testutil.Record("p", "", props(KeyTitle, testutil.TitleProp("x")))
	if got := NormalizeDetail(&rec, "# converted").BodyRaw; got != "# converted" {
		t.Errorf("body = %q", got)
	}
	if got := NormalizeDetail(&rec, "  \n").BodyRaw; got != EmptyBody {
		t.Errorf("blank body = %q, want sentinel", got)
	}
}

func TestExplain_ReportsWinningStep(t *testing.T) {
	rec := testutil.Record("p", "2024-01-01T00:00:00Z", props(
		KeySourceAlias, testutil.MultiSelectProp("x"),
	))
	got := Explain(&rec, ViewDetail, "")
	if got["category"] != "source:Source/multi_select" {
		t.Errorf("category step = %q", got["category"])
	}
	if got["date"] != "system:created_time/timestamp" {
		t.Errorf("date step = %q", got["date"])
	}
	if got["title"] != "fallback" {
		t.Errorf("title step = %q", got["title"])
	}
	if !strings.HasPrefix(got["body_raw"], "fallback") {
		t.Errorf("body step = %q", got["body_raw"])
	}
}

func TestCategoryChain_Order(t *testing.T) {
	var got []string
	for _, s := range CategoryChain() {
		got = append(got, s.String())
	}
	want := []string{
		"primary:카테고리|Category/select",
		"source:소스|Source/multi_select",
		"source:소스|Source/select",
		"fallback",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("chain = %v\nwant  %v", got, want)
	}
}
