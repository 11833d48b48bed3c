package complete

// List is the candidate set of one completion session. Candidates are fixed
// when the list is created; Next and Previous cycle through them.
type List struct {
	// Root is the text before the completed token.
	Root string

	candidates []string
	index      int
}

// NewList returns a List with no candidate selected.
func NewList(root string, candidates []string) *List {
	return &List{Root: root, candidates: candidates, index: -1}
}

// Len returns the number of candidates.
func (l *List) Len() int { return len(l.candidates) }

// Candidates returns the candidates.
func (l *List) Candidates() []string { return l.candidates }

// Next selects and returns the next candidate, wrapping to the first after
// the last. It returns "" if there are no candidates.
func (l *List) Next() string {
	if len(l.candidates) == 0 {
		return ""
	}
	l.index = (l.index + 1) % len(l.candidates)
	return l.candidates[l.index]
}

// Previous selects and returns the previous candidate, wrapping to the last
// before the first. On a fresh list it returns the last candidate. It returns
// "" if there are no candidates.
func (l *List) Previous() string {
	n := len(l.candidates)
	if n == 0 {
		return ""
	}
	if l.index <= 0 {
		l.index = n - 1
	} else {
		l.index--
	}
	return l.candidates[l.index]
}
