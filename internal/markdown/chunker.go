// Package markdown splits brand documents into heading-scoped, token-bounded
// chunks suitable for embedding and retrieval.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Default chunking options.
const (
	DefaultMaxTokens = 500
	DefaultMinTokens = 20
)

// maxHeadingLevel is the deepest markdown heading level tracked.
const maxHeadingLevel = 6

// Chunk is one retrieval unit of a markdown document.
type Chunk struct {
	// Heading is the nearest heading title, suffixed "(part N)" when the
	// heading's body split into multiple chunks. Empty for intro content.
	Heading string
	// HeadingHierarchy lists the heading-stack titles from root to leaf,
	// one slot per level; len(HeadingHierarchy) == HeadingLevel. A skipped
	// level leaves an empty slot.
	HeadingHierarchy []string
	// Content is the chunk text, with the heading line prepended when
	// Options.IncludeHeadingInContent is set.
	Content string
	// TokenCount approximates the content size at 4 characters per token.
	TokenCount int
	// HeadingLevel is 1-6 for heading-scoped chunks, 0 for intro content.
	HeadingLevel int
}

// Options configures chunking. Zero values fall back to the defaults
// (MaxTokens 500, MinTokens 20).
type Options struct {
	MaxTokens               int
	MinTokens               int
	IncludeHeadingInContent bool
}

// DefaultOptions returns the standard chunking configuration.
func DefaultOptions() Options {
	return Options{
		MaxTokens:               DefaultMaxTokens,
		MinTokens:               DefaultMinTokens,
		IncludeHeadingInContent: true,
	}
}

// Chunker splits markdown documents at heading boundaries while keeping each
// chunk under a token budget. It is stateless across calls.
type Chunker struct {
	parser goldmark.Markdown
	opts   Options
}

// NewChunker creates a chunker with the default options.
func NewChunker() *Chunker {
	return NewChunkerWithOptions(DefaultOptions())
}

// NewChunkerWithOptions creates a chunker with explicit options.
func NewChunkerWithOptions(opts Options) *Chunker {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.MinTokens <= 0 {
		opts.MinTokens = DefaultMinTokens
	}
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Chunker{parser: md, opts: opts}
}

// headingMark is one heading occurrence located in the source.
type headingMark struct {
	level     int
	title     string
	lineStart int // offset of the start of the heading line
	lineEnd   int // offset just past the heading line (and setext underline)
}

// ChunkDocument splits a markdown document into heading-scoped, token-bounded
// chunks. Heading detection goes through the goldmark AST, so hash characters
// inside fenced code blocks never open a section.
func (c *Chunker) ChunkDocument(source []byte) []Chunk {
	marks := c.findHeadings(source)

	var chunks []Chunk
	var stack [maxHeadingLevel]string

	// Content before the first heading becomes level-0 chunks.
	introEnd := len(source)
	if len(marks) > 0 {
		introEnd = marks[0].lineStart
	}
	chunks = append(chunks, c.flush(string(source[:introEnd]), "", 0, nil)...)

	for i, mark := range marks {
		stack[mark.level-1] = mark.title
		for j := mark.level; j < maxHeadingLevel; j++ {
			stack[j] = ""
		}
		hierarchy := make([]string, mark.level)
		copy(hierarchy, stack[:mark.level])

		bodyEnd := len(source)
		if i+1 < len(marks) {
			bodyEnd = marks[i+1].lineStart
		}
		body := string(source[mark.lineEnd:bodyEnd])

		chunks = append(chunks, c.flush(body, mark.title, mark.level, hierarchy)...)
	}

	return chunks
}

// findHeadings walks the AST and records every heading with its byte
// boundaries in the source.
func (c *Chunker) findHeadings(source []byte) []headingMark {
	doc := c.parser.Parser().Parse(text.NewReader(source))

	var marks []headingMark
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		heading := n.(*ast.Heading)
		if heading.Lines().Len() == 0 {
			// Bare marker with no title text; nothing to anchor a chunk to.
			return ast.WalkContinue, nil
		}

		first := heading.Lines().At(0)
		last := heading.Lines().At(heading.Lines().Len() - 1)

		lineStart := 0
		if idx := bytes.LastIndexByte(source[:first.Start], '\n'); idx >= 0 {
			lineStart = idx + 1
		}
		lineEnd := last.Stop
		if idx := bytes.IndexByte(source[lineEnd:], '\n'); idx >= 0 {
			lineEnd += idx + 1
		} else {
			lineEnd = len(source)
		}
		lineEnd = skipSetextUnderline(source, lineEnd, heading.Level)

		marks = append(marks, headingMark{
			level:     heading.Level,
			title:     headingTitle(heading, source),
			lineStart: lineStart,
			lineEnd:   lineEnd,
		})
		return ast.WalkSkipChildren, nil
	})
	return marks
}

// flush turns one heading's body into chunks. The body is kept whole when it
// fits the token budget; otherwise it splits greedily on paragraph, then
// sentence boundaries. A single sentence over budget is kept whole rather
// than broken mid-unit.
func (c *Chunker) flush(body, heading string, level int, hierarchy []string) []Chunk {
	raw := strings.TrimSpace(body)
	if raw == "" && heading == "" {
		return nil
	}

	prefix := ""
	budget := c.opts.MaxTokens
	if c.opts.IncludeHeadingInContent && heading != "" {
		prefix = strings.Repeat("#", level) + " "
		// Reserve room for the heading line and a possible part suffix.
		budget -= estimateTokens(prefix+heading+"\n\n") + partSuffixTokens
		if budget < 1 {
			budget = 1
		}
	}

	pieces := splitToBudget(raw, budget)

	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		title := heading
		if title != "" && len(pieces) > 1 {
			title = fmt.Sprintf("%s (part %d)", heading, i+1)
		}

		content := piece
		if prefix != "" {
			if piece == "" {
				content = prefix + title
			} else {
				content = prefix + title + "\n\n" + piece
			}
		}

		tokens := estimateTokens(content)
		// Undersized chunks are dropped unless they are the heading's sole
		// chunk or its final part.
		if tokens < c.opts.MinTokens && len(pieces) > 1 && i != len(pieces)-1 {
			continue
		}

		chunks = append(chunks, Chunk{
			Heading:          title,
			HeadingHierarchy: hierarchy,
			Content:          content,
			TokenCount:       tokens,
			HeadingLevel:     level,
		})
	}
	return chunks
}

// partSuffixTokens over-reserves budget for the " (part N)" heading suffix.
const partSuffixTokens = 3

// splitToBudget splits text into pieces of at most maxTokens, first on
// blank-line paragraph boundaries, then on sentence boundaries for a single
// oversized paragraph. Accumulation is greedy: a piece grows until the next
// unit would push it over budget.
func splitToBudget(text string, maxTokens int) []string {
	if estimateTokens(text) <= maxTokens {
		return []string{text}
	}

	var pieces []string
	current := ""
	for _, para := range splitParagraphs(text) {
		if estimateTokens(para) > maxTokens {
			// Oversized paragraph: flush what we have and sentence-split it.
			if current != "" {
				pieces = append(pieces, current)
				current = ""
			}
			pieces = append(pieces, splitSentencesToBudget(para, maxTokens)...)
			continue
		}
		joined := para
		if current != "" {
			joined = current + "\n\n" + para
		}
		if current != "" && estimateTokens(joined) > maxTokens {
			pieces = append(pieces, current)
			current = para
			continue
		}
		current = joined
	}
	if current != "" {
		pieces = append(pieces, current)
	}
	return pieces
}

// splitSentencesToBudget greedily packs sentences under the budget. A single
// sentence over budget stays whole.
func splitSentencesToBudget(para string, maxTokens int) []string {
	var pieces []string
	current := ""
	for _, sentence := range splitSentences(para) {
		joined := sentence
		if current != "" {
			joined = current + " " + sentence
		}
		if current != "" && estimateTokens(joined) > maxTokens {
			pieces = append(pieces, current)
			current = sentence
			continue
		}
		current = joined
	}
	if current != "" {
		pieces = append(pieces, current)
	}
	return pieces
}

// splitParagraphs splits on blank-line boundaries.
func splitParagraphs(text string) []string {
	var paras []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paras = append(paras, strings.Join(current, "\n"))
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paras = append(paras, strings.Join(current, "\n"))
	}
	return paras
}

// splitSentences splits on terminal punctuation followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\n' && runes[i+1] != '\t' {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// estimateTokens approximates the token count at 4 characters per token,
// rounded up.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// headingTitle collects the literal text of a heading node.
func headingTitle(heading *ast.Heading, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(heading, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// skipSetextUnderline advances past a setext underline ("===" or "---")
// immediately following a level 1 or 2 heading's text line.
func skipSetextUnderline(source []byte, offset, level int) int {
	if level > 2 || offset >= len(source) {
		return offset
	}
	marker := byte('=')
	if level == 2 {
		marker = '-'
	}
	lineEnd := bytes.IndexByte(source[offset:], '\n')
	var line []byte
	next := len(source)
	if lineEnd < 0 {
		line = source[offset:]
	} else {
		line = source[offset : offset+lineEnd]
		next = offset + lineEnd + 1
	}
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return offset
	}
	for _, b := range trimmed {
		if b != marker {
			return offset
		}
	}
	return next
}
