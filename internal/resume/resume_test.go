package resume

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		r, err := Load(filepath.Join("testdata", "resume.json"))
		if err != nil {
			t.Fatal(err)
		}
		if len(r.Work) != 3 || len(r.Projects) != 1 || len(r.Education) != 1 || len(r.Awards) != 1 {
			t.Fatalf("unexpected section sizes: %+v", r)
		}
		if r.Work[0].Employer() != "Initech" || r.Work[1].Employer() != "Amazon" {
			t.Errorf("employers = %q, %q", r.Work[0].Employer(), r.Work[1].Employer())
		}
		if r.Basics.Name != "Sam Rivera" || r.Basics.Label != "Software Engineer" {
			t.Errorf("basics = %+v", r.Basics)
		}
		if r.Projects[0].Name != "resumerank" || r.Education[0].StudyType != "BSc" || r.Awards[0].Awarder != "Initech" {
			t.Errorf("projects = %+v, education = %+v, awards = %+v", r.Projects, r.Education, r.Awards)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		r, err := Load(filepath.Join("testdata", "resume.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if len(r.Work) != 2 || r.Work[1].Employer() != "Amazon" {
			t.Errorf("work = %+v", r.Work)
		}
		if !reflect.DeepEqual(r.Work[0].Highlights, []string{"Built the billing pipeline"}) {
			t.Errorf("highlights = %v", r.Work[0].Highlights)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestEmployer_PrefersCompany(t *testing.T) {
	w := Work{Company: " Acme ", Name: "Other"}
	if w.Employer() != "Acme" {
		t.Errorf("Employer() = %q", w.Employer())
	}
}

func TestWorkText(t *testing.T) {
	tests := []struct {
		name string
		work Work
		want string
	}{
		{
			"with highlights",
			Work{Company: "Acme", Position: "Engineer", Highlights: []string{"Shipped X", "Led Y"}},
			"Engineer at Acme.\nShipped X Led Y",
		},
		{"no highlights", Work{Name: "Acme", Position: "Engineer"}, "Engineer at Acme.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorkText(tt.work); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := (&Resume{Work: make([]Work, 19), Education: make([]Education, 9)}).Validate(); err != nil {
		t.Errorf("resume below limits should validate, got %v", err)
	}

	r := &Resume{
		Work:      make([]Work, 20),
		Projects:  make([]Project, 3),
		Education: make([]Education, 10),
		Awards:    make([]Award, 12),
	}
	err := r.Validate()
	var le *LimitError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LimitError, got %v", err)
	}
	want := []Violation{
		{Section: "work", Count: 20, Max: MaxWork},
		{Section: "education", Count: 10, Max: MaxEducation},
		{Section: "awards", Count: 12, Max: MaxAwards},
	}
	if !reflect.DeepEqual(le.Violations, want) {
		t.Errorf("violations = %+v", le.Violations)
	}
	if !strings.Contains(err.Error(), "work has 20 entries") {
		t.Errorf("error message = %q", err.Error())
	}
}
