// Package termrender prints an article to a terminal, wrapping text by
// display width so that wide (Hangul, CJK) and narrow characters line up.
package termrender

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/starford/ledgr/internal/models"
)

const (
	DefaultWidth = 80
	minWidth     = 20
)

// Options controls rendering.
type Options struct {
	Width int  // display columns; DefaultWidth when zero
	Color bool // emit ANSI styles regardless of the terminal
}

// styles belong to a renderer for the output writer. The color profile is
// fixed by Options.Color rather than detected.
type styles struct {
	emphasis lipgloss.Style
	title    lipgloss.Style
	h2       lipgloss.Style
	h3       lipgloss.Style
	dim      lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	lr := lipgloss.NewRenderer(w)
	if color {
		lr.SetColorProfile(termenv.ANSI)
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}
	return styles{
		emphasis: lr.NewStyle().Bold(true),
		title:    lr.NewStyle().Bold(true),
		h2:       lr.NewStyle().Bold(true).Underline(true),
		h3:       lr.NewStyle().Bold(true),
		dim:      lr.NewStyle().Faint(true),
	}
}

type piece struct {
	text string
	bold bool
}

// Render writes the article header followed by its body blocks.
func Render(w io.Writer, a models.Article, blocks []models.Block, opts Options) error {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	if width < minWidth {
		width = minWidth
	}
	r := &renderer{bw: bufio.NewWriter(w), width: width, st: newStyles(w, opts.Color)}

	r.header(a)
	for _, b := range blocks {
		switch b.Kind {
		case models.BlockHeading:
			r.heading(b)
		case models.BlockParagraph:
			r.paragraph(b.Spans)
		case models.BlockSpacer:
			r.bw.WriteString("\n")
		}
	}
	return r.bw.Flush()
}

type renderer struct {
	bw    *bufio.Writer
	width int
	st    styles
}

func (r *renderer) header(a models.Article) {
	r.styledLine("["+a.Category+"]", r.st.dim)
	for _, l := range wrap([]piece{{text: a.Title, bold: true}}, r.width) {
		r.line(l, r.st.title)
	}
	r.styledLine(a.Brand+" · "+a.Date, r.st.dim)
	if a.ImageURL != nil {
		r.styledLine(runewidth.Truncate(*a.ImageURL, r.width, "…"), r.st.dim)
	}
	r.bw.WriteString(strings.Repeat("-", r.width))
	r.bw.WriteString("\n")
}

func (r *renderer) heading(b models.Block) {
	style := r.st.h3
	if b.Level == 2 {
		style = r.st.h2
	}
	lines := wrap([]piece{{text: b.Text, bold: true}}, r.width)
	if len(lines) == 0 {
		r.line(nil, style)
		return
	}
	for _, l := range lines {
		r.line(l, style)
	}
}

func (r *renderer) paragraph(spans []models.Span) {
	ps := make([]piece, len(spans))
	for i, s := range spans {
		ps[i] = piece{text: s.Text, bold: s.Emphasized}
	}
	lines := wrap(ps, r.width)
	if len(lines) == 0 {
		r.line(nil, r.st.emphasis)
		return
	}
	for _, l := range lines {
		r.line(l, r.st.emphasis)
	}
}

// line writes one wrapped line; bold pieces are rendered with style.
func (r *renderer) line(ps []piece, style lipgloss.Style) {
	for _, p := range ps {
		if p.bold && p.text != "" {
			r.bw.WriteString(style.Render(p.text))
		} else {
			r.bw.WriteString(p.text)
		}
	}
	r.bw.WriteString("\n")
}

func (r *renderer) styledLine(s string, style lipgloss.Style) {
	if s != "" {
		s = style.Render(s)
	}
	r.bw.WriteString(s)
	r.bw.WriteString("\n")
}

// wrap breaks pieces into lines of at most width display columns. Words
// are split on whitespace; a word wider than a line is broken by rune.
func wrap(ps []piece, width int) [][]piece {
	var (
		lines [][]piece
		cur   []piece
		curW  int
	)
	flush := func() {
		lines = append(lines, cur)
		cur, curW = nil, 0
	}

	for _, word := range words(ps) {
		ww := lineWidth(word)
		if curW > 0 && curW+1+ww > width {
			flush()
		}
		if ww > width {
			for _, chunk := range breakWord(word, width) {
				if curW > 0 {
					flush()
				}
				cur, curW = chunk, lineWidth(chunk)
			}
			continue
		}
		if curW > 0 {
			cur = appendPiece(cur, " ", false)
			curW++
		}
		for _, p := range word {
			cur = appendPiece(cur, p.text, p.bold)
		}
		curW += ww
	}
	if curW > 0 {
		flush()
	}
	return lines
}

// words splits pieces on whitespace. A word may span pieces of different
// styles, as in "**bold**suffix".
func words(ps []piece) [][]piece {
	var (
		out  [][]piece
		cur  []piece
		text strings.Builder
	)
	endPiece := func(bold bool) {
		if text.Len() > 0 {
			cur = appendPiece(cur, text.String(), bold)
			text.Reset()
		}
	}
	for _, p := range ps {
		for _, r := range p.text {
			if unicode.IsSpace(r) {
				endPiece(p.bold)
				if len(cur) > 0 {
					out = append(out, cur)
					cur = nil
				}
				continue
			}
			text.WriteRune(r)
		}
		endPiece(p.bold)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func breakWord(word []piece, width int) [][]piece {
	var (
		out  [][]piece
		cur  []piece
		curW int
	)
	for _, p := range word {
		for _, r := range p.text {
			rw := runewidth.RuneWidth(r)
			if curW > 0 && curW+rw > width {
				out = append(out, cur)
				cur, curW = nil, 0
			}
			cur = appendPiece(cur, string(r), p.bold)
			curW += rw
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func appendPiece(ps []piece, text string, bold bool) []piece {
	if n := len(ps); n > 0 && ps[n-1].bold == bold {
		ps[n-1].text += text
		return ps
	}
	return append(ps, piece{text: text, bold: bold})
}

func lineWidth(ps []piece) int {
	w := 0
	for _, p := range ps {
		w += runewidth.StringWidth(p.text)
	}
	return w
}
