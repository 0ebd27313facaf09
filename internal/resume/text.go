package resume

import (
	"fmt"
	"strings"
)

// WorkText is the text embedded for a work entry: the title line followed by the
// highlights joined with spaces.
func WorkText(w Work) string {
	return fmt.Sprintf("%s at %s.\n%s", w.Position, w.Employer(), strings.Join(w.Highlights, " "))
}

// WorkTexts returns WorkText for every work entry, in order.
func WorkTexts(r *Resume) []string {
	out := make([]string, len(r.Work))
	for i, w := range r.Work {
		out[i] = WorkText(w)
	}
	return out
}

// Title is the short "position at company" label for a work entry.
func Title(w Work) string {
	return fmt.Sprintf("%s at %s", w.Position, w.Employer())
}
