package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultChunkTokens and DefaultOverlapTokens are the token-count defaults
// from which max_chars/overlap_chars are derived (chars = tokens · 4).
const (
	DefaultChunkTokens   = 400
	DefaultOverlapTokens = 80
	charsPerToken        = 4
	minChunkChars        = 32
)

// ChunkOptions configures the sliding-window markdown chunker. Zero values
// select the package defaults.
type ChunkOptions struct {
	ChunkTokens   int
	OverlapTokens int
}

func (o ChunkOptions) maxChars() int {
	tokens := o.ChunkTokens
	if tokens <= 0 {
		tokens = DefaultChunkTokens
	}
	if m := tokens * charsPerToken; m > minChunkChars {
		return m
	}
	return minChunkChars
}

func (o ChunkOptions) overlapChars() int {
	tokens := o.OverlapTokens
	if tokens <= 0 {
		tokens = DefaultOverlapTokens
	}
	if c := tokens * charsPerToken; c > 0 {
		return c
	}
	return 0
}

// lineSeg is one (possibly split) physical line, tagged with its original
// 1-based line number so a long line split into several segments still
// reports the same StartLine/EndLine as the rest of that line.
type lineSeg struct {
	text   string
	lineNo int
}

func splitOverlongLines(content string, maxChars int) []lineSeg {
	rawLines := strings.Split(content, "\n")
	segs := make([]lineSeg, 0, len(rawLines))
	for i, line := range rawLines {
		lineNo := i + 1
		if len(line) <= maxChars {
			segs = append(segs, lineSeg{text: line, lineNo: lineNo})
			continue
		}
		for start := 0; start < len(line); start += maxChars {
			end := start + maxChars
			if end > len(line) {
				end = len(line)
			}
			segs = append(segs, lineSeg{text: line[start:end], lineNo: lineNo})
		}
	}
	return segs
}

// ChunkMarkdown splits content into a line-aware sliding window of chunks:
// lines accumulate until the next line would push the running length past
// opts.maxChars(), at which point the chunk is emitted and a tail of its
// trailing lines (reaching opts.overlapChars()) seeds the next chunk.
// Whitespace-only chunks are discarded.
func ChunkMarkdown(content string, opts ChunkOptions) []Chunk {
	maxChars := opts.maxChars()
	overlapChars := opts.overlapChars()
	segs := splitOverlongLines(content, maxChars)

	var chunks []Chunk
	var current []lineSeg
	currentLen := 0

	segLen := func(s lineSeg) int { return len(s.text) }

	emit := func() {
		if len(current) == 0 {
			return
		}
		texts := make([]string, len(current))
		for i, s := range current {
			texts[i] = s.text
		}
		text := strings.Join(texts, "\n")
		if strings.TrimSpace(text) != "" {
			sum := sha256.Sum256([]byte(text))
			chunks = append(chunks, Chunk{
				Text:      text,
				StartLine: current[0].lineNo,
				EndLine:   current[len(current)-1].lineNo,
				Hash:      hex.EncodeToString(sum[:]),
			})
		}
	}

	for _, seg := range segs {
		added := segLen(seg)
		if len(current) > 0 {
			added++ // joining newline
		}
		if len(current) > 0 && currentLen+added > maxChars {
			emit()

			// Carry the tail reaching overlapChars into the next chunk.
			var tail []lineSeg
			tailLen := 0
			for i := len(current) - 1; i >= 0 && tailLen < overlapChars; i-- {
				tail = append([]lineSeg{current[i]}, tail...)
				tailLen += segLen(current[i]) + 1
			}
			current = tail
			currentLen = 0
			for i, s := range current {
				if i > 0 {
					currentLen++
				}
				currentLen += segLen(s)
			}
		}

		if len(current) > 0 {
			currentLen++
		}
		current = append(current, seg)
		currentLen += segLen(seg)
	}
	emit()

	return chunks
}
