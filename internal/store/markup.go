package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Block styles of a native document
const (
	StyleHeading1  = "heading1"
	StyleHeading2  = "heading2"
	StyleHeading3  = "heading3"
	StyleParagraph = "paragraph"
	StyleBullet    = "bullet"
	StyleNumbered  = "numbered"
	StyleQuote     = "quote"
	StyleCode      = "code"
)

// Block is one structural element of a native document
type Block struct {
	Style string `json:"style"`
	Text  string `json:"text"`
}

// NativeDocument is the store-native representation of an editable document
type NativeDocument struct {
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

// ParseNativeDocument decodes and validates stored document content
func ParseNativeDocument(content []byte) (*NativeDocument, error) {
	var doc NativeDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode native document: %w", err)
	}
	for i, b := range doc.Blocks {
		switch b.Style {
		case StyleHeading1, StyleHeading2, StyleHeading3, StyleParagraph,
			StyleBullet, StyleNumbered, StyleQuote, StyleCode:
		default:
			return nil, fmt.Errorf("block %d has unknown style %q", i, b.Style)
		}
	}
	return &doc, nil
}

// RenderMarkdown converts a native document to Markdown.
// Consecutive list items of the same style form one list; other blocks are
// separated by a blank line. The output always ends with a newline unless empty.
func RenderMarkdown(doc *NativeDocument) string {
	var b strings.Builder
	prev := ""
	n := 0

	for _, blk := range doc.Blocks {
		isList := blk.Style == StyleBullet || blk.Style == StyleNumbered
		if b.Len() > 0 {
			if isList && blk.Style == prev {
				b.WriteString("\n")
			} else {
				b.WriteString("\n\n")
			}
		}
		if blk.Style != StyleNumbered || prev != StyleNumbered {
			n = 0
		}

		switch blk.Style {
		case StyleHeading1:
			b.WriteString("# " + blk.Text)
		case StyleHeading2:
			b.WriteString("## " + blk.Text)
		case StyleHeading3:
			b.WriteString("### " + blk.Text)
		case StyleBullet:
			b.WriteString("- " + blk.Text)
		case StyleNumbered:
			n++
			b.WriteString(strconv.Itoa(n) + ". " + blk.Text)
		case StyleQuote:
			lines := strings.Split(blk.Text, "\n")
			for i, l := range lines {
				if i > 0 {
					b.WriteString("\n")
				}
				b.WriteString("> " + l)
			}
		case StyleCode:
			b.WriteString("```\n" + blk.Text + "\n```")
		default:
			b.WriteString(blk.Text)
		}
		prev = blk.Style
	}

	if b.Len() == 0 {
		return ""
	}
	b.WriteString("\n")
	return b.String()
}
