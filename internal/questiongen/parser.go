package questiongen

import (
	"strings"

	"github.com/pgokul695/Winterthon/internal/quiz"
)

const (
	defaultCorrectExplanation = "This is the correct answer based on the transcript."
	defaultWrongExplanation   = "This option is incorrect."
)

// DefaultExplanations returns the explanations used when a completion
// carries none.
func DefaultExplanations() [4]string {
	return [4]string{
		defaultCorrectExplanation,
		defaultWrongExplanation,
		defaultWrongExplanation,
		defaultWrongExplanation,
	}
}

// Parse recovers a question from one completion written in the anchor
// grammar (QUESTION, CORRECT, WRONG, EXPLANATIONS). Anchors match
// case-insensitively and markdown noise is tolerated. QUESTION, CORRECT
// and WRONG are mandatory; a missing EXPLANATIONS section yields the
// default explanations.
func Parse(raw string) (*quiz.ParsedQuestion, error) {
	text := stripFences(raw)

	q := indexFold(text, "QUESTION:", 0)
	if q < 0 {
		return nil, &MissingSectionError{Section: SectionQuestion}
	}
	qStart := q + len("QUESTION:")

	// Everything from the EXPLANATIONS anchor on is kept out of the
	// answer sections.
	body := text
	expAt, expLen := findExplanations(text, qStart)
	if expAt >= 0 {
		body = text[:expAt]
	}

	c := indexFold(body, "CORRECT:", qStart)
	qEnd := len(body)
	if c >= 0 {
		qEnd = c
	}
	question := collapse(body[qStart:qEnd])
	if question == "" {
		return nil, &MissingSectionError{Section: SectionQuestion}
	}
	if c < 0 {
		return nil, &MissingSectionError{Section: SectionCorrect}
	}
	cStart := c + len("CORRECT:")

	cEnd := indexFold(body, "WRONG", cStart)
	if cEnd < 0 {
		cEnd = len(body)
	}
	correct := collapse(body[cStart:cEnd])
	if correct == "" {
		return nil, &MissingSectionError{Section: SectionCorrect}
	}

	wrong, err := parseWrong(body, cStart)
	if err != nil {
		return nil, err
	}

	pq := &quiz.ParsedQuestion{
		Question:     question,
		Correct:      correct,
		Wrong:        wrong,
		Explanations: DefaultExplanations(),
	}
	if expAt >= 0 {
		fillExplanations(&pq.Explanations, text[expAt+expLen:])
	}
	return pq, nil
}

// parseWrong extracts the wrong-answer block starting at the first
// "WRONG:" anchor after from, or at "WRONG 1:" when the model labelled
// every answer.
func parseWrong(body string, from int) ([]string, error) {
	at, n := -1, 0
	if i := indexFold(body, "WRONG:", from); i >= 0 {
		at, n = i, len("WRONG:")
	} else {
		for i := indexFold(body, "WRONG", from); i >= 0; i = indexFold(body, "WRONG", i+1) {
			if l, num := numberedLabel(body[i:], "WRONG"); l > 0 && num == "1" {
				at, n = i, l
				break
			}
		}
	}
	if at < 0 {
		return nil, &MissingSectionError{Section: SectionWrong}
	}

	var out []string
	for _, line := range strings.Split(body[at+n:], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = cleanLine(stripWrongLabel(line))
		// A model that repeats the label on every line leaves "WRONG"
		// debris behind.
		if line == "" || hasPrefixFold(line, "WRONG") {
			continue
		}
		out = append(out, line)
	}

	if len(out) < MinWrongAnswers {
		return nil, &InsufficientWrongAnswersError{Found: len(out), Candidates: out}
	}
	return out[:MinWrongAnswers:MinWrongAnswers], nil
}

func stripWrongLabel(line string) string {
	if hasPrefixFold(line, "WRONG:") {
		return strings.TrimSpace(line[len("WRONG:"):])
	}
	if l, _ := numberedLabel(line, "WRONG"); l > 0 {
		return strings.TrimSpace(line[l:])
	}
	return line
}

// fillExplanations splits the EXPLANATIONS section on CORRECT / WRONG <N>
// labels and fills slots positionally. Unfilled slots keep their defaults.
func fillExplanations(exp *[4]string, section string) {
	var labels [][2]int // label start, text start
	for i := 0; i < len(section); i++ {
		if n := explanationLabelAt(section, i); n > 0 {
			labels = append(labels, [2]int{i, i + n})
			i += n - 1
		}
	}

	var spans []string
	for k, l := range labels {
		end := len(section)
		if k+1 < len(labels) {
			end = labels[k+1][0]
		}
		if s := collapse(section[l[1]:end]); s != "" {
			spans = append(spans, s)
		}
	}

	for i := 0; i < len(spans) && i < len(exp); i++ {
		exp[i] = spans[i]
	}
}

// explanationLabelAt returns the length of a CORRECT:, CORRECT <N>:,
// WRONG: or WRONG <N>: label starting at s[i], or 0.
func explanationLabelAt(s string, i int) int {
	if i > 0 && isASCIILetter(s[i-1]) {
		return 0
	}
	rest := s[i:]
	switch {
	case hasPrefixFold(rest, "CORRECT:"):
		return len("CORRECT:")
	case hasPrefixFold(rest, "WRONG:"):
		return len("WRONG:")
	}
	if l, _ := numberedLabel(rest, "CORRECT"); l > 0 {
		return l
	}
	if l, _ := numberedLabel(rest, "WRONG"); l > 0 {
		return l
	}
	return 0
}

// numberedLabel matches "<word> <digits>:" at the start of s, with any
// run of spaces or tabs around the number. It returns the label length
// and the number, or 0.
func numberedLabel(s, word string) (int, string) {
	if !hasPrefixFold(s, word) {
		return 0, ""
	}
	i := len(word)
	ws := i
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i == ws {
		return 0, ""
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0, ""
	}
	num := s[digits:i]
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i >= len(s) || s[i] != ':' {
		return 0, ""
	}
	return i + 1, num
}

// findExplanations locates "EXPLANATIONS:" (or the singular form) at or
// after from and returns its offset and length, or -1.
func findExplanations(text string, from int) (int, int) {
	for i := indexFold(text, "EXPLANATION", from); i >= 0; i = indexFold(text, "EXPLANATION", i+1) {
		j := i + len("EXPLANATION")
		if j < len(text) && (text[j] == 'S' || text[j] == 's') {
			j++
		}
		for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
			j++
		}
		if j < len(text) && text[j] == ':' {
			return i, j + 1 - i
		}
	}
	return -1, 0
}

// stripFences drops code-fence lines and any stray fence markers.
func stripFences(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, strings.ReplaceAll(line, "```", ""))
	}
	return strings.Join(kept, "\n")
}

// collapse cleans every line of block and joins the non-empty ones with
// a single space.
func collapse(block string) string {
	var parts []string
	for _, line := range strings.Split(block, "\n") {
		if l := cleanLine(line); l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}

// cleanLine removes markdown emphasis, inline code and enumeration or
// bullet prefixes from one line. Prefixes go first so a "* " bullet never
// pairs with an asterisk in the text, as in "* 2*3 = 6".
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.ReplaceAll(line, "**", "")
	line = stripLinePrefixes(line)
	line = unwrapPairs(line, '*')
	line = unwrapPairs(line, '`')
	return stripLinePrefixes(strings.TrimLeft(line, "*"))
}

// stripLinePrefixes repeatedly strips bullets and "A." / "1."
// enumerations. An enumeration must be followed by whitespace so that
// "3.5" and "A.I." survive; "-" and "*" bullets must be followed by
// whitespace so that negative numbers and italics survive.
func stripLinePrefixes(s string) string {
	for {
		s = strings.TrimSpace(s)
		before := s

		switch {
		case strings.HasPrefix(s, "•"):
			s = s[len("•"):]
		case strings.HasPrefix(s, "- "), strings.HasPrefix(s, "-\t"):
			s = s[1:]
		case strings.HasPrefix(s, "* "), strings.HasPrefix(s, "*\t"):
			s = s[1:]
		case len(s) >= 2 && isOptionLetter(s[0]) && s[1] == '.' && endsToken(s, 2):
			s = s[2:]
		default:
			if n := leadingDigits(s); n > 0 && n < len(s) && s[n] == '.' && endsToken(s, n+1) {
				s = s[n+1:]
			}
		}

		if s == before {
			return strings.TrimSpace(s)
		}
	}
}

// unwrapPairs removes each pair of c that encloses at least one
// character, keeping the enclosed text.
func unwrapPairs(s string, c byte) string {
	var b strings.Builder
	for {
		i := strings.IndexByte(s, c)
		if i < 0 {
			break
		}
		j := strings.IndexByte(s[i+1:], c)
		if j < 0 {
			break
		}
		if j == 0 {
			b.WriteString(s[:i+1])
			s = s[i+1:]
			continue
		}
		b.WriteString(s[:i])
		b.WriteString(s[i+1 : i+1+j])
		s = s[i+j+2:]
	}
	b.WriteString(s)
	return b.String()
}

func endsToken(s string, i int) bool {
	return i >= len(s) || s[i] == ' ' || s[i] == '\t'
}

func leadingDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

func isOptionLetter(c byte) bool {
	return (c >= 'A' && c <= 'D') || (c >= 'a' && c <= 'd')
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func upperASCII(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// hasPrefixFold reports whether s starts with the ASCII prefix, ignoring
// ASCII case. Byte offsets into s stay valid, unlike with strings.ToUpper.
func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if upperASCII(s[i]) != upperASCII(prefix[i]) {
			return false
		}
	}
	return true
}

// indexFold returns the first offset >= from where the ASCII anchor
// occurs in s, ignoring case, or -1.
func indexFold(s, anchor string, from int) int {
	for i := from; i+len(anchor) <= len(s); i++ {
		if hasPrefixFold(s[i:], anchor) {
			return i
		}
	}
	return -1
}
