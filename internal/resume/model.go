// Package resume loads JSON Resume documents and ranks their entries against a query.
package resume

import "strings"

// Resume is the subset of the JSON Resume schema this tool reads.
type Resume struct {
	Basics    Basics      `json:"basics" yaml:"basics"`
	Work      []Work      `json:"work" yaml:"work"`
	Projects  []Project   `json:"projects" yaml:"projects"`
	Education []Education `json:"education" yaml:"education"`
	Awards    []Award     `json:"awards" yaml:"awards"`
}

// Basics holds the candidate's identity and headline.
type Basics struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Work is one employment entry. Older JSON Resume files use "company", newer ones "name".
type Work struct {
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Company    string   `json:"company,omitempty" yaml:"company,omitempty"`
	Position   string   `json:"position,omitempty" yaml:"position,omitempty"`
	URL        string   `json:"url,omitempty" yaml:"url,omitempty"`
	StartDate  string   `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate    string   `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Summary    string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Highlights []string `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

// Employer returns the company name, preferring "company" over "name".
func (w Work) Employer() string {
	if c := strings.TrimSpace(w.Company); c != "" {
		return c
	}
	return strings.TrimSpace(w.Name)
}

// Project is a personal or open-source project listed alongside work history.
type Project struct {
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string   `json:"url,omitempty" yaml:"url,omitempty"`
	StartDate   string   `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Roles       []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	Highlights  []string `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

// Education is one degree or course of study.
type Education struct {
	Institution string   `json:"institution,omitempty" yaml:"institution,omitempty"`
	Area        string   `json:"area,omitempty" yaml:"area,omitempty"`
	StudyType   string   `json:"studyType,omitempty" yaml:"studyType,omitempty"`
	StartDate   string   `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Score       string   `json:"score,omitempty" yaml:"score,omitempty"`
	Courses     []string `json:"courses,omitempty" yaml:"courses,omitempty"`
}

// Award is a prize or recognition with its issuer.
type Award struct {
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Date    string `json:"date,omitempty" yaml:"date,omitempty"`
	Awarder string `json:"awarder,omitempty" yaml:"awarder,omitempty"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}
