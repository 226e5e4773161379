// Package formatter turns a raw article body into typed content blocks.
//
// The input is either an AI analysis string (often JSON-escaped, quoted or
// wrapped in a code fence) or a converted document body. Formatting is
// line-oriented and never fails: anything not recognised becomes a plain
// paragraph.
package formatter

import (
	"regexp"
	"strings"

	"github.com/starford/ledgr/internal/models"
)

var (
	fenceOpenRe  = regexp.MustCompile("(?i)^```[a-z]*(?:\r?\n|\\\\n)?")
	fenceCloseRe = regexp.MustCompile("(?:\r?\n|\\\\n)?```$")
	h2Re         = regexp.MustCompile(`^##\s+`)
	h3Re         = regexp.MustCompile(`^###\s+`)
	emphasisRe   = regexp.MustCompile(`\*\*.*?\*\*`)
)

const (
	h2Marker = "## "
	h3Marker = "### "
)

// Format converts raw body text into blocks, one or more per input line.
// An empty input yields a single spacer.
func Format(raw string) []models.Block {
	lines := strings.Split(Unwrap(raw), "\n")
	out := make([]models.Block, 0, len(lines))
	for _, line := range lines {
		out = append(out, classify(line))
	}
	return out
}

// Unwrap strips a surrounding quote pair, then a surrounding code fence,
// then expands literal \n escapes into newlines, in that order.
func Unwrap(raw string) string {
	s := raw
	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		if len(s) >= 2 {
			s = s[1 : len(s)-1]
		} else {
			s = ""
		}
	}

	if open := fenceOpenRe.FindStringIndex(s); open != nil {
		rest := s[open[1]:]
		if close := fenceCloseRe.FindStringIndex(rest); close != nil {
			s = rest[:close[0]]
		}
	}

	return strings.ReplaceAll(s, `\n`, "\n")
}

func classify(line string) models.Block {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, h2Marker):
		return models.Heading(2, h2Re.ReplaceAllString(line, ""))
	case strings.HasPrefix(trimmed, h3Marker):
		return models.Heading(3, h3Re.ReplaceAllString(line, ""))
	case trimmed == "":
		return models.Spacer()
	default:
		return models.Paragraph(Spans(line)...)
	}
}

// Spans splits a paragraph line on **emphasis** delimiters. Delimited and
// plain segments alternate and both are kept, including empty segments at
// the edges, so the span list mirrors the line exactly.
func Spans(line string) []models.Span {
	matches := emphasisRe.FindAllStringIndex(line, -1)
	spans := make([]models.Span, 0, 2*len(matches)+1)
	prev := 0
	for _, m := range matches {
		spans = append(spans, segment(line[prev:m[0]]), segment(line[m[0]:m[1]]))
		prev = m[1]
	}
	return append(spans, segment(line[prev:]))
}

func segment(s string) models.Span {
	// A bare "**" or "***" is literal text, not an empty emphasis.
	if len(s) >= 4 && strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**") {
		return models.Span{Text: s[2 : len(s)-2], Emphasized: true}
	}
	return models.Span{Text: s}
}

// PlainText serializes blocks back to body text: headings with their
// marker, emphasized spans wrapped in **, spacers as empty lines.
func PlainText(blocks []models.Block) string {
	lines := make([]string, len(blocks))
	for i, b := range blocks {
		switch b.Kind {
		case models.BlockHeading:
			lines[i] = strings.Repeat("#", b.Level) + " " + b.Text
		case models.BlockParagraph:
			var sb strings.Builder
			for _, sp := range b.Spans {
				if sp.Emphasized {
					sb.WriteString("**" + sp.Text + "**")
				} else {
					sb.WriteString(sp.Text)
				}
			}
			lines[i] = sb.String()
		}
	}
	return strings.Join(lines, "\n")
}
