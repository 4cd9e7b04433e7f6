package textsplit

import "strings"

const (
	DefaultChunkSize = 250
	DefaultOverlap   = 75
)

// defaultSeparators in priority order: paragraph break, line break, sentence
// terminator, space, hard cut.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter cuts text into pieces of at most ChunkSize characters with roughly
// Overlap characters shared between consecutive pieces. Split points prefer
// the highest-priority separator that keeps pieces within the bound; only a
// run with no usable separator gets hard-cut.
type Splitter struct {
	ChunkSize int
	Overlap   int

	separators []string
}

func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultOverlap
		if overlap >= chunkSize {
			overlap = 0
		}
	}
	return &Splitter{ChunkSize: chunkSize, Overlap: overlap, separators: defaultSeparators}
}

func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, seps []string) []string {
	sep, rest := pickSeparator(text, seps)
	if sep == "" {
		return s.hardCut(text)
	}

	pieces := splitAfter(text, sep)

	var out []string
	var fitting []string
	for _, p := range pieces {
		if len(p) <= s.ChunkSize {
			fitting = append(fitting, p)
			continue
		}
		// An oversized piece: flush what fits so far, then retry the piece
		// with lower-priority separators.
		if len(fitting) > 0 {
			out = append(out, s.merge(fitting)...)
			fitting = nil
		}
		out = append(out, s.split(p, rest)...)
	}
	if len(fitting) > 0 {
		out = append(out, s.merge(fitting)...)
	}
	return out
}

// pickSeparator returns the first separator present in the text and the
// lower-priority separators left to recurse with. The empty separator always
// matches.
func pickSeparator(text string, seps []string) (string, []string) {
	for i, sep := range seps {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, seps[i+1:]
		}
	}
	return "", nil
}

// splitAfter splits keeping the separator attached to the preceding piece, so
// sentence terminators stay with their sentence.
func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// merge greedily packs fitting pieces into chunks up to ChunkSize, carrying
// roughly Overlap characters of trailing pieces into the next chunk.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var window []string
	total := 0

	flush := func() {
		chunk := strings.TrimSpace(strings.Join(window, ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, p := range pieces {
		if total+len(p) > s.ChunkSize && total > 0 {
			flush()
			// Shrink the window from the front until the retained tail fits
			// the overlap budget and leaves room for the incoming piece.
			for len(window) > 0 && (total > s.Overlap || total+len(p) > s.ChunkSize) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, p)
		total += len(p)
	}
	flush()
	return chunks
}

// hardCut falls back to a sliding rune window when no separator can help.
func (s *Splitter) hardCut(text string) []string {
	runes := []rune(text)
	step := s.ChunkSize - s.Overlap
	if step <= 0 {
		step = s.ChunkSize
	}
	var out []string
	for i := 0; i < len(runes); i += step {
		end := i + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		part := strings.TrimSpace(string(runes[i:end]))
		if part != "" {
			out = append(out, part)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
