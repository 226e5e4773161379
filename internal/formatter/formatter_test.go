package formatter

import (
	"reflect"
	"testing"

	"github.com/starford/ledgr/internal/models"
)

func span(text string, emphasized bool) models.Span {
	return models.Span{Text: text, Emphasized: emphasized}
}

func TestFormat_MixedBody(t *testing.T) {
	got := Format("## Intro\nHello **world**\n\n### Next")
	want := []models.Block{
		models.Heading(2, "Intro"),
		models.Paragraph(span("Hello ", false), span("world", true), span("", false)),
		models.Spacer(),
		models.Heading(3, "Next"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Format =\n%+v\nwant\n%+v", got, want)
	}
}

func TestFormat_EmptyInputIsSingleSpacer(t *testing.T) {
	got := Format("")
	if len(got) != 1 || got[0].Kind != models.BlockSpacer {
		t.Errorf("Format(\"\") = %+v, want one spacer", got)
	}
}

func TestFormat_EscapedNewlines(t *testing.T) {
	got := Format(`## A\nbody`)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].Kind != models.BlockHeading || got[0].Text != "A" {
		t.Errorf("block 0 = %+v", got[0])
	}
	if blockText(got[1]) != "body" {
		t.Errorf("block 1 text = %q", blockText(got[1]))
	}
}

func TestFormat_HeadingNeedsSpace(t *testing.T) {
	got := Format("##Title")
	if got[0].Kind != models.BlockParagraph {
		t.Fatalf("kind = %s, want paragraph", got[0].Kind)
	}
	if blockText(got[0]) != "##Title" {
		t.Errorf("text = %q", blockText(got[0]))
	}
}

func TestFormat_HeadingKeepsTrailingWhitespace(t *testing.T) {
	got := Format("### Deep  ")
	if got[0].Kind != models.BlockHeading || got[0].Level != 3 {
		t.Fatalf("block = %+v", got[0])
	}
	if got[0].Text != "Deep  " {
		t.Errorf("text = %q, want trailing whitespace kept", got[0].Text)
	}
}

// An indented marker still classifies the line as a heading, but only a
// marker at the very start of the line is stripped from its text.
func TestFormat_IndentedHeadingKeepsMarker(t *testing.T) {
	tests := []struct {
		line  string
		level int
	}{
		{"  ## Title", 2},
		{"   ### Deep  ", 3},
		{"\t## Tabbed", 2},
	}
	for _, tt := range tests {
		got := Format(tt.line)
		if len(got) != 1 || got[0].Kind != models.BlockHeading || got[0].Level != tt.level {
			t.Errorf("Format(%q) = %+v", tt.line, got)
			continue
		}
		if got[0].Text != tt.line {
			t.Errorf("Format(%q) text = %q, want line unchanged", tt.line, got[0].Text)
		}
	}
}

func TestFormat_WhitespaceLineIsSpacer(t *testing.T) {
	got := Format("a\n   \t\nb")
	if len(got) != 3 || got[1].Kind != models.BlockSpacer {
		t.Errorf("Format = %+v", got)
	}
}

func TestSpans_UnmatchedDelimiters(t *testing.T) {
	tests := []struct {
		line string
		want []models.Span
	}{
		{"**", []models.Span{span("**", false)}},
		{"***", []models.Span{span("***", false)}},
		{"a **b", []models.Span{span("a **b", false)}},
		{"****", []models.Span{span("", false), span("", true), span("", false)}},
		{"**a****b**", []models.Span{
			span("", false), span("a", true), span("", false), span("b", true), span("", false),
		}},
		{"x **y** z **", []models.Span{span("x ", false), span("y", true), span(" z **", false)}},
	}
	for _, tt := range tests {
		got := Spans(tt.line)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Spans(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestUnwrap_QuoteFenceEscapeOrder(t *testing.T) {
	if got := Unwrap("\"```text\\nHello\\n```\""); got != "Hello" {
		t.Errorf("Unwrap = %q, want Hello", got)
	}
	if got := Unwrap("```markdown\n## T\nbody\n```"); got != "## T\nbody" {
		t.Errorf("Unwrap real newlines = %q", got)
	}
}

func TestUnwrap_PartialWrappers(t *testing.T) {
	tests := map[string]string{
		`"`:              "",
		`"only leading`:  `"only leading`,
		"```go\nno close": "```go\nno close",
		"no open\n```":   "no open\n```",
		`plain\ntext`:    "plain\ntext",
	}
	for in, want := range tests {
		if got := Unwrap(in); got != want {
			t.Errorf("Unwrap(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormat_NeverPanics(t *testing.T) {
	inputs := []string{"", "\"", "```", "\"```\"", "\\n\\n", "**\n**", "## ", "### ", "\x00\xff"}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Format(%q) panicked: %v", in, r)
				}
			}()
			if len(Format(in)) == 0 {
				t.Errorf("Format(%q) returned no blocks", in)
			}
		}()
	}
}

func TestFormat_IdempotentOnParagraphs(t *testing.T) {
	first := Format("plain line\nwith **bold** text\n**lead** and tail")
	second := Format(PlainText(first))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestPlainText_RoundTripsHeadingsAndSpacers(t *testing.T) {
	in := "## A\n\n### B\ntext **x**"
	if got := PlainText(Format(in)); got != in {
		t.Errorf("PlainText = %q, want %q", got, in)
	}
}

func blockText(b models.Block) string {
	if b.Kind == models.BlockHeading {
		return b.Text
	}
	var text string
	for _, sp := range b.Spans {
		text += sp.Text
	}
	return text
}
