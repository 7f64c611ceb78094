package services

import "strings"

// LineWindow is a bounded forward search starting at an anchor line.
// Lines Anchor through Anchor+Limit inclusive are candidates.
type LineWindow struct {
	Anchor int
	Limit  int
}

// LineMatch is a line located by a LineWindow.
type LineMatch struct {
	Line  string
	Index int
}

// Last returns the last index the window may inspect in a buffer of n
// lines, or -1 when the window lies outside the buffer.
func (w LineWindow) Last(n int) int {
	if w.Anchor < 0 || w.Anchor >= n || w.Limit < 0 {
		return -1
	}
	last := w.Anchor + w.Limit
	if last > n-1 {
		last = n - 1
	}
	return last
}

// Find returns the first line in the window containing tag.
func (w LineWindow) Find(lines []string, tag string) (LineMatch, bool) {
	return w.FindFrom(lines, w.Anchor, tag)
}

// FindFrom continues a search from index from, never before the anchor
// and never past the window.
func (w LineWindow) FindFrom(lines []string, from int, tag string) (LineMatch, bool) {
	if from < w.Anchor {
		from = w.Anchor
	}
	last := w.Last(len(lines))
	for i := from; i <= last; i++ {
		if strings.Contains(lines[i], tag) {
			return LineMatch{Index: i, Line: lines[i]}, true
		}
	}
	return LineMatch{}, false
}
