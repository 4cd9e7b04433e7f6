package answer

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// fuzzyCutoff is the minimum similarity ratio a reference label must reach
// in the last fallback stage.
const fuzzyCutoff = 0.7

var (
	deptRe          = regexp.MustCompile(`phone number for ([\w\s\-_/()]+)`)
	phonePatternRe  = regexp.MustCompile(`\b\d{4}-\d{4}\b`)
	anchoredTokenRe = regexp.MustCompile(`^\+?\d{4,}(?:-\d{4})?`)
	numberTokenRe   = regexp.MustCompile(`\+?\d{4,}(?:-\d{4})?`)
	shortSuffixRe   = regexp.MustCompile(`^(\d{3,})[/\\](\d{1,4})$`)
	partSplitRe     = regexp.MustCompile(`,| and `)
	normPunctRe     = regexp.MustCompile(`[\s\-.:;+()\[\]/_,]`)
	normSymbolRe    = regexp.MustCompile("[!@#$%^&*'\"?<>~`=\\\\]")
)

// PhoneDirectory resolves department phone numbers. The layered strategy
// first scans the generated answer, then the reference document with exact
// label matching, then the reference document with fuzzy label matching.
type PhoneDirectory struct {
	path string
}

// NewPhoneDirectory takes the path of the reference document, a plain-text
// file of "Label: Number[, Number...]" lines.
func NewPhoneDirectory(path string) *PhoneDirectory {
	return &PhoneDirectory{path: path}
}

// DepartmentFromQuestion parses the department out of a phone-number
// question. The question is expected lower-cased.
func DepartmentFromQuestion(question string) (string, bool) {
	m := deptRe.FindStringSubmatch(question)
	if m == nil {
		return "", false
	}
	dept := strings.TrimSpace(m[1])
	if dept == "" {
		return "", false
	}
	return dept, true
}

// Lookup runs the fallback chain for a phone-number question and returns the
// answer text plus a success flag. It never fails with an error: every miss
// degrades to a descriptive answer.
func (d *PhoneDirectory) Lookup(question, generatedAnswer string) (string, bool) {
	dept, ok := DepartmentFromQuestion(question)
	if !ok {
		return "Please specify a department to get the correct phone number.", false
	}
	normDept := normalizeLabel(dept)

	found := make(map[string]struct{})

	// Stage one: label-matching lines of the generated answer that carry a
	// phone pattern.
	for _, line := range strings.Split(generatedAnswer, "\n") {
		if !phonePatternRe.MatchString(line) {
			continue
		}
		if label, ok := splitLabel(line); ok && normalizeLabel(label) == normDept {
			collect(found, extractNumbers(line))
		}
	}

	// Stage two: exact label match against the reference document.
	if len(found) == 0 {
		for _, line := range d.lines() {
			if label, ok := splitLabel(line); ok && normalizeLabel(label) == normDept {
				collect(found, extractNumbers(line))
			}
		}
	}

	// Stage three: fuzzy nearest neighbour over the reference labels.
	if len(found) == 0 {
		if line, ok := d.closestLine(normDept); ok {
			collect(found, extractNumbers(line))
		}
	}

	if len(found) == 0 {
		return fmt.Sprintf("No valid phone number found for %s.", dept), false
	}

	numbers := make([]string, 0, len(found))
	for n := range found {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	return strings.Join(numbers, ", "), true
}

func (d *PhoneDirectory) lines() []string {
	data, err := os.ReadFile(d.path)
	if err != nil {
		slog.Warn("phone reference document unavailable", "path", d.path, "error", err)
		return nil
	}
	return strings.Split(string(data), "\n")
}

// closestLine returns the reference line whose label is most similar to the
// normalized department, provided the ratio clears the cutoff.
func (d *PhoneDirectory) closestLine(normDept string) (string, bool) {
	bestRatio := fuzzyCutoff
	bestLine := ""
	ok := false
	for _, line := range d.lines() {
		label, hasLabel := splitLabel(line)
		if !hasLabel {
			continue
		}
		ratio := similarity(normDept, normalizeLabel(label))
		if ratio >= bestRatio {
			bestRatio = ratio
			bestLine = line
			ok = true
		}
	}
	return bestLine, ok
}

// similarity is a character-level difflib ratio in [0, 1].
func similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

func splitLabel(line string) (string, bool) {
	i := strings.Index(line, ":")
	if i < 0 {
		return "", false
	}
	return line[:i], true
}

func normalizeLabel(s string) string {
	s = strings.ToLower(s)
	s = normPunctRe.ReplaceAllString(s, "")
	s = normSymbolRe.ReplaceAllString(s, "")
	return s
}

// extractNumbers pulls numeric tokens from a "Label: value" line. A token of
// the form "<long>/<short>" (or backslash) is treated as a shortened form of
// the same number: the suffix is spliced into the tail of the prefix and both
// the raw and expanded forms are kept. The heuristic can misfire on
// genuinely distinct numbers sharing a separator.
func extractNumbers(line string) []string {
	rest := line
	if _, ok := splitLabel(line); ok {
		rest = line[strings.Index(line, ":")+1:]
	}

	set := make(map[string]struct{})
	for _, part := range partSplitRe.Split(rest, -1) {
		part = strings.TrimSpace(part)
		if m := shortSuffixRe.FindStringSubmatch(part); m != nil {
			base, suffix := m[1], m[2]
			if len(suffix) < len(base) {
				expanded := base[:len(base)-len(suffix)] + suffix
				set[base] = struct{}{}
				set[expanded] = struct{}{}
			} else {
				set[part] = struct{}{}
			}
			continue
		}
		for _, sub := range strings.Split(part, "/") {
			sub = strings.TrimSpace(sub)
			if anchoredTokenRe.MatchString(sub) {
				set[sub] = struct{}{}
			}
		}
	}
	for _, tok := range numberTokenRe.FindAllString(line, -1) {
		set[tok] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func collect(dst map[string]struct{}, numbers []string) {
	for _, n := range numbers {
		dst[n] = struct{}{}
	}
}
