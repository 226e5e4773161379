package notion

import (
	"strconv"
	"strings"

	"github.com/jomei/notionapi"
)

// Node is a content block with its fetched children. The API returns
// children through a separate call, so the tree is assembled client side.
type Node struct {
	Block    notionapi.Block
	Children []Node
}

// ToMarkdown converts blocks into Markdown. Top-level blocks are separated
// by blank lines; consecutive list items stay on adjacent lines.
func ToMarkdown(nodes []Node) string {
	return strings.TrimRight(render(nodes, ""), "\n")
}

func render(nodes []Node, indent string) string {
	var sb strings.Builder
	number := 0
	for i, n := range nodes {
		if _, ok := n.Block.(*notionapi.NumberedListItemBlock); ok {
			number++
		} else {
			number = 0
		}

		md, ok := blockMarkdown(n.Block, number)
		if !ok {
			continue
		}
		sb.WriteString(indentLines(md, indent))
		sb.WriteString("\n")
		if len(n.Children) > 0 {
			sb.WriteString(render(n.Children, indent+"  "))
		}
		next := i + 1
		if next < len(nodes) && isListItem(n.Block) && isListItem(nodes[next].Block) {
			continue
		}
		if indent == "" {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func blockMarkdown(b notionapi.Block, number int) (string, bool) {
	switch v := b.(type) {
	case *notionapi.ParagraphBlock:
		return RichTextMarkdown(v.Paragraph.RichText), true
	case *notionapi.Heading1Block:
		return "# " + RichTextMarkdown(v.Heading1.RichText), true
	case *notionapi.Heading2Block:
		return "## " + RichTextMarkdown(v.Heading2.RichText), true
	case *notionapi.Heading3Block:
		return "### " + RichTextMarkdown(v.Heading3.RichText), true
	case *notionapi.BulletedListItemBlock:
		return "- " + RichTextMarkdown(v.BulletedListItem.RichText), true
	case *notionapi.NumberedListItemBlock:
		return strconv.Itoa(number) + ". " + RichTextMarkdown(v.NumberedListItem.RichText), true
	case *notionapi.ToDoBlock:
		box := "[ ]"
		if v.ToDo.Checked {
			box = "[x]"
		}
		return "- " + box + " " + RichTextMarkdown(v.ToDo.RichText), true
	case *notionapi.ToggleBlock:
		return RichTextMarkdown(v.Toggle.RichText), true
	case *notionapi.QuoteBlock:
		return "> " + RichTextMarkdown(v.Quote.RichText), true
	case *notionapi.CalloutBlock:
		text := RichTextMarkdown(v.Callout.RichText)
		if icon := v.Callout.Icon; icon != nil && icon.Emoji != nil && *icon.Emoji != "" {
			text = string(*icon.Emoji) + " " + text
		}
		return "> " + text, true
	case *notionapi.CodeBlock:
		return "```" + v.Code.Language + "\n" + plain(v.Code.RichText) + "\n```", true
	case *notionapi.DividerBlock:
		return "---", true
	case *notionapi.ImageBlock:
		src := ""
		if v.Image.File != nil {
			src = v.Image.File.URL
		} else if v.Image.External != nil {
			src = v.Image.External.URL
		}
		if src == "" {
			return "", false
		}
		return "![" + plain(v.Image.Caption) + "](" + src + ")", true
	case *notionapi.BookmarkBlock:
		if v.Bookmark.URL == "" {
			return "", false
		}
		label := plain(v.Bookmark.Caption)
		if label == "" {
			label = v.Bookmark.URL
		}
		return "[" + label + "](" + v.Bookmark.URL + ")", true
	default:
		return "", false
	}
}

// RichTextMarkdown renders styled runs as inline Markdown.
func RichTextMarkdown(runs []notionapi.RichText) string {
	var sb strings.Builder
	for _, r := range runs {
		t := r.PlainText
		if t == "" {
			continue
		}
		if a := r.Annotations; a != nil {
			if a.Code {
				t = "`" + t + "`"
			}
			if a.Bold {
				t = "**" + t + "**"
			}
			if a.Italic {
				t = "_" + t + "_"
			}
			if a.Strikethrough {
				t = "~~" + t + "~~"
			}
		}
		if r.Href != "" {
			t = "[" + t + "](" + r.Href + ")"
		}
		sb.WriteString(t)
	}
	return sb.String()
}

func plain(runs []notionapi.RichText) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.PlainText)
	}
	return sb.String()
}

func isListItem(b notionapi.Block) bool {
	switch b.(type) {
	case *notionapi.BulletedListItemBlock, *notionapi.NumberedListItemBlock, *notionapi.ToDoBlock:
		return true
	}
	return false
}

func indentLines(s, indent string) string {
	if indent == "" {
		return s
	}
	return indent + strings.ReplaceAll(s, "\n", "\n"+indent)
}
