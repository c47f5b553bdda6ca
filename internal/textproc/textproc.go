// Package textproc cleans and chunks text for downstream extraction.
//
// Chunking targets LLM context windows: paragraphs are packed up to a
// size limit, oversized paragraphs fall back to sentence boundaries, and
// pathological sentences are hard-split. Consecutive chunks share an
// overlap region so entities straddling a boundary are not lost.
package textproc

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxChunkSize is the character budget per chunk.
	DefaultMaxChunkSize = 8000

	// DefaultOverlapSize is how many trailing characters of a chunk are
	// repeated at the start of the next one.
	DefaultOverlapSize = 500
)

// Chunker splits text into bounded, overlapping chunks.
type Chunker struct {
	MaxChunkSize int
	OverlapSize  int
}

// NewChunker returns a chunker with the default sizes.
func NewChunker() *Chunker {
	return &Chunker{
		MaxChunkSize: DefaultMaxChunkSize,
		OverlapSize:  DefaultOverlapSize,
	}
}

var (
	multiSpaceRe = regexp.MustCompile(`[ \t\r\f\v]+`)
	sentenceRe   = regexp.MustCompile(`(?:[.!?])\s+`)
)

// Clean normalizes text: whitespace runs collapse to one space,
// typographic quotes and dashes become their ASCII forms, and control
// characters are dropped. Newlines survive so paragraph structure stays
// available to Split.
func Clean(text string) string {
	replacer := strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
		"–", "-", "—", "-",
	)
	text = replacer.Replace(text)

	var b strings.Builder

	b.Grow(len(text))

	for _, r := range text {
		if r == '\n' || r == '\t' || r == '\r' || r >= 0x20 {
			b.WriteRune(r)
		}
	}

	text = multiSpaceRe.ReplaceAllString(b.String(), " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Split divides text into chunks of at most MaxChunkSize characters.
// Paragraphs are kept together where possible; a paragraph larger than
// the budget is split on sentence boundaries, and a single oversized
// sentence is cut at fixed offsets. Every chunk after the first starts
// with the tail of its predecessor.
func (c *Chunker) Split(text string) []string {
	if len(text) <= c.MaxChunkSize {
		return []string{text}
	}

	var (
		chunks  []string
		current string
	)

	flush := func() {
		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}
	}

	for _, paragraph := range strings.Split(text, "\n") {
		switch {
		case len(paragraph) > c.MaxChunkSize:
			flush()

			chunks, current = c.splitParagraph(paragraph, chunks)

		case len(current)+len(paragraph)+2 <= c.MaxChunkSize:
			if current != "" {
				current += "\n\n" + paragraph
			} else {
				current = paragraph
			}

		default:
			flush()

			current = paragraph
		}
	}

	flush()

	return c.addOverlap(chunks)
}

// splitParagraph packs sentences of an oversized paragraph into chunks,
// returning the extended chunk list and the unfinished remainder.
func (c *Chunker) splitParagraph(paragraph string, chunks []string) ([]string, string) {
	var current string

	for _, sentence := range splitSentences(paragraph) {
		if len(current)+len(sentence)+1 <= c.MaxChunkSize {
			if current != "" {
				current += " " + sentence
			} else {
				current = sentence
			}

			continue
		}

		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}

		if len(sentence) > c.MaxChunkSize {
			chunks = append(chunks, c.hardSplit(sentence)...)
			continue
		}

		current = sentence
	}

	return chunks, current
}

// hardSplit cuts an oversized sentence at fixed offsets, stepping by
// MaxChunkSize minus the overlap so adjacent pieces share context.
func (c *Chunker) hardSplit(sentence string) []string {
	step := c.MaxChunkSize - c.OverlapSize
	if step <= 0 {
		step = c.MaxChunkSize
	}

	var pieces []string

	for i := 0; i < len(sentence); i += step {
		end := min(i+c.MaxChunkSize, len(sentence))
		pieces = append(pieces, sentence[i:end])

		if end == len(sentence) {
			break
		}
	}

	return pieces
}

// addOverlap prepends each chunk with the tail of its predecessor.
func (c *Chunker) addOverlap(chunks []string) []string {
	if c.OverlapSize <= 0 || len(chunks) < 2 {
		return chunks
	}

	overlapped := make([]string, len(chunks))
	overlapped[0] = chunks[0]

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		if len(prev) > c.OverlapSize {
			prev = prev[len(prev)-c.OverlapSize:]
		}

		overlapped[i] = prev + chunks[i]
	}

	return overlapped
}

// splitSentences breaks a paragraph after sentence-final punctuation.
// The terminator stays attached to its sentence.
func splitSentences(paragraph string) []string {
	locs := sentenceRe.FindAllStringIndex(paragraph, -1)
	if locs == nil {
		return []string{paragraph}
	}

	var (
		sentences []string
		start     int
	)

	for _, loc := range locs {
		// loc[0]+1 keeps the punctuation with the sentence.
		sentences = append(sentences, paragraph[start:loc[0]+1])
		start = loc[1]
	}

	if start < len(paragraph) {
		sentences = append(sentences, paragraph[start:])
	}

	return sentences
}
