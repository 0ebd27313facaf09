package resume

import (
	"fmt"
	"strings"
)

// Entry limits. A resume must stay strictly below each of them.
const (
	MaxWork      = 20
	MaxProjects  = 20
	MaxEducation = 10
	MaxAwards    = 10
)

// Violation records one section that reached its limit.
type Violation struct {
	Section string `json:"section"`
	Count   int    `json:"count"`
	Max     int    `json:"max"`
}

// LimitError lists every section whose entry count is at or above its limit.
type LimitError struct {
	Violations []Violation
}

func (e *LimitError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s has %d entries (must be fewer than %d)", v.Section, v.Count, v.Max)
	}
	return "resume exceeds limits: " + strings.Join(parts, "; ")
}

// Validate returns a *LimitError if any section is too large, nil otherwise.
func (r *Resume) Validate() error {
	var vs []Violation
	check := func(section string, n, max int) {
		if n >= max {
			vs = append(vs, Violation{Section: section, Count: n, Max: max})
		}
	}
	check("work", len(r.Work), MaxWork)
	check("projects", len(r.Projects), MaxProjects)
	check("education", len(r.Education), MaxEducation)
	check("awards", len(r.Awards), MaxAwards)
	if len(vs) > 0 {
		return &LimitError{Violations: vs}
	}
	return nil
}
