package markdown

import (
	"fmt"

	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// OutlineItem is one heading in a document's table of contents.
type OutlineItem struct {
	Title string        `json:"title"`
	ID    string        `json:"id,omitempty"`
	Items []OutlineItem `json:"items,omitempty"`
}

// Outline extracts the heading tree of a markdown document, covering all six
// heading levels.
func (c *Chunker) Outline(source []byte) ([]OutlineItem, error) {
	doc := c.parser.Parser().Parse(text.NewReader(source))

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(maxHeadingLevel),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect TOC: %w", err)
	}

	return convertItems(tree.Items), nil
}

func convertItems(items toc.Items) []OutlineItem {
	out := make([]OutlineItem, 0, len(items))
	for _, item := range items {
		out = append(out, OutlineItem{
			Title: string(item.Title),
			ID:    string(item.ID),
			Items: convertItems(item.Items),
		})
	}
	return out
}
