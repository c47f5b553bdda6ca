package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapse spaces",
			in:   "silica   exposure\tdrives  fibrosis",
			want: "silica exposure drives fibrosis",
		},
		{
			name: "typographic quotes",
			in:   "“silicosis” and ‘dust’",
			want: `"silicosis" and 'dust'`,
		},
		{
			name: "dashes",
			in:   "dose–response — strong",
			want: "dose-response - strong",
		},
		{
			name: "keeps newlines",
			in:   "first paragraph\nsecond   paragraph",
			want: "first paragraph\nsecond paragraph",
		},
		{
			name: "windows line endings",
			in:   "one\r\ntwo\rthree",
			want: "one\ntwo three",
		},
		{
			name: "drops control characters",
			in:   "text\x00with\x07noise",
			want: "textwithnoise",
		},
		{
			name: "keeps CJK",
			in:   "矽肺  的研究",
			want: "矽肺 的研究",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestSplitShortText(t *testing.T) {
	c := NewChunker()

	chunks := c.Split("short text")
	require.Equal(t, []string{"short text"}, chunks)
}

func TestSplitPacksParagraphs(t *testing.T) {
	c := &Chunker{MaxChunkSize: 100, OverlapSize: 0}

	para := strings.Repeat("a", 40)
	text := strings.Join([]string{para, para, para, para}, "\n")

	chunks := c.Split(text)

	// Two paragraphs fit per chunk (40+2+40 <= 100).
	require.Len(t, chunks, 2)
	require.Equal(t, para+"\n\n"+para, chunks[0])
}

func TestSplitSentenceFallback(t *testing.T) {
	c := &Chunker{MaxChunkSize: 100, OverlapSize: 0}

	sentence := strings.Repeat("b", 60) + "."
	paragraph := sentence + " " + sentence + " " + sentence

	chunks := c.Split(paragraph)
	require.Len(t, chunks, 3)

	for _, chunk := range chunks {
		require.LessOrEqual(t, len(chunk), 100)
		require.True(t, strings.HasSuffix(chunk, "."))
	}
}

func TestSplitHardSplitsOversizedSentence(t *testing.T) {
	c := &Chunker{MaxChunkSize: 100, OverlapSize: 20}

	// One unbroken 250-char "sentence" with no punctuation.
	text := strings.Repeat("c", 250) + "\nshort tail"

	chunks := c.Split(text)
	require.GreaterOrEqual(t, len(chunks), 3)

	for _, chunk := range chunks {
		require.LessOrEqual(t, len(chunk), 100+20)
	}
}

func TestSplitOverlap(t *testing.T) {
	c := &Chunker{MaxChunkSize: 100, OverlapSize: 10}

	first := strings.Repeat("d", 90)
	second := strings.Repeat("e", 90)

	chunks := c.Split(first + "\n" + second)
	require.Len(t, chunks, 2)

	// The second chunk starts with the tail of the first.
	require.True(t, strings.HasPrefix(chunks[1], strings.Repeat("d", 10)+strings.Repeat("e", 10)))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First one. Second two! Third three? Tail without end")

	require.Equal(t, []string{
		"First one.",
		"Second two!",
		"Third three?",
		"Tail without end",
	}, got)
}

func TestSplitDefaultsRoundTripLongAbstracts(t *testing.T) {
	c := NewChunker()

	sentence := "Crystalline silica exposure induces progressive pulmonary fibrosis in exposed workers. "
	text := strings.Repeat(sentence, 300) // ~26k chars

	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		require.LessOrEqual(t, len(chunk), DefaultMaxChunkSize+DefaultOverlapSize)
	}
}
