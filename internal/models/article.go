package models

// Article is the canonical display model built from a Record. Every
// UI-bound field always holds a displayable value; absence is resolved to a
// sentinel by the normalizer. ImageURL is nil when there is no thumbnail.
type Article struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url"`
	BodyRaw     string  `json:"body_raw,omitempty"`
}

// BlockKind tags the variant held by a Block.
type BlockKind string

// Block kinds.
const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockSpacer    BlockKind = "spacer"
)

// Block is one unit of formatted body output. Level and Text are set for
// headings, Spans for paragraphs; spacers carry nothing.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Level int       `json:"level,omitempty"`
	Text  string    `json:"text,omitempty"`
	Spans []Span    `json:"spans,omitempty"`
}

// Span is a run of paragraph text.
type Span struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized,omitempty"`
}

// Heading returns a heading block of the given level (2 or 3).
func Heading(level int, text string) Block {
	return Block{Kind: BlockHeading, Level: level, Text: text}
}

// Paragraph returns a paragraph block.
func Paragraph(spans ...Span) Block {
	return Block{Kind: BlockParagraph, Spans: spans}
}

// Spacer returns a spacer block.
func Spacer() Block {
	return Block{Kind: BlockSpacer}
}
