// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/delphi-survey/formstats"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Page names outside the question pages
const (
	PageBasic  = "basic"
	PageFinish = "finish"
)

var (
	ErrNoPages       = errors.New("catalog has no pages")
	ErrDuplicatePage = errors.New("duplicate page name")
	ErrClosedMode    = errors.New("closed mode field has no tie_breaks list")
)

type Country struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

type PatentField struct {
	Name string `yaml:"name" json:"name"`
	Desc string `yaml:"desc" json:"desc"`
}

// Condition makes Require mandatory when Field equals Equals.
type Condition struct {
	Field   string `yaml:"field" json:"field"`
	Equals  string `yaml:"equals" json:"equals"`
	Require string `yaml:"require" json:"require"`
}

// Page is one wizard step. Means and Modes name the first-round fields
// aggregated for display; Required names answers that must be present
// for every code before the respondent may move on. A mode field listed
// in ClosedModes only counts the values of its tie_breaks list.
type Page struct {
	Name        string              `yaml:"name" json:"name"`
	Title       string              `yaml:"title" json:"title"`
	Means       []string            `yaml:"means" json:"means,omitempty"`
	Modes       []string            `yaml:"modes" json:"modes,omitempty"`
	Required    []string            `yaml:"required" json:"required,omitempty"`
	TieBreaks   map[string][]string `yaml:"tie_breaks" json:"tie_breaks,omitempty"`
	ClosedModes []string            `yaml:"closed_modes" json:"closed_modes,omitempty"`
	Patents     bool                `yaml:"patents" json:"patents"`

	RequiredWhen []Condition `yaml:"required_when" json:"required_when,omitempty"`
}

// RequiredFor lists the fields that must be answered given the answers
// already present for one code.
func (p Page) RequiredFor(answers map[string]string) []string {
	out := append([]string(nil), p.Required...)
	for _, c := range p.RequiredWhen {
		if answers[c.Field] == c.Equals {
			out = append(out, c.Require)
		}
	}
	return out
}

type Status struct {
	Classifications      []string `yaml:"classifications" json:"classifications"`
	MinTotal             int      `yaml:"min_total" json:"min_total"`
	MinPerClassification int      `yaml:"min_per_classification" json:"min_per_classification"`
}

type Catalog struct {
	Title         string            `yaml:"title" json:"title"`
	Countries     []Country         `yaml:"countries" json:"countries"`
	PatentFields  []PatentField     `yaml:"patent_fields" json:"patent_fields"`
	Majors        map[string]string `yaml:"majors" json:"majors"`
	Pages         []Page            `yaml:"pages" json:"pages"`
	SummaryFields []string          `yaml:"summary_fields" json:"summary_fields"`
	Status        Status            `yaml:"status" json:"status"`
}

// Load reads a catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Pages) == 0 {
		return ErrNoPages
	}
	seen := make(map[string]bool, len(c.Pages))
	for _, p := range c.Pages {
		if p.Name == "" || p.Name == PageBasic || p.Name == PageFinish {
			return fmt.Errorf("invalid page name %q", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicatePage, p.Name)
		}
		seen[p.Name] = true
		for _, field := range p.ClosedModes {
			if len(p.TieBreaks[field]) == 0 {
				return fmt.Errorf("%w: %s.%s", ErrClosedMode, p.Name, field)
			}
		}
	}
	return nil
}

// Page looks up a question page by name.
func (c *Catalog) Page(name string) (Page, bool) {
	for _, p := range c.Pages {
		if p.Name == name {
			return p, true
		}
	}
	return Page{}, false
}

// Next returns the step after name: the first page after basic, and
// finish after the last page.
func (c *Catalog) Next(name string) string {
	if name == PageBasic {
		return c.Pages[0].Name
	}
	for i, p := range c.Pages {
		if p.Name != name {
			continue
		}
		if i+1 < len(c.Pages) {
			return c.Pages[i+1].Name
		}
		return PageFinish
	}
	return ""
}

// Prev returns the step before name, basic for the first page.
func (c *Catalog) Prev(name string) string {
	for i, p := range c.Pages {
		if p.Name != name {
			continue
		}
		if i == 0 {
			return PageBasic
		}
		return c.Pages[i-1].Name
	}
	return ""
}

// Last is the page whose completion allows submission.
func (c *Catalog) Last() Page {
	return c.Pages[len(c.Pages)-1]
}

// Progress is the percentage of question pages before name.
func (c *Catalog) Progress(name string) int {
	for i, p := range c.Pages {
		if p.Name == name {
			return i * 100 / len(c.Pages)
		}
	}
	if name == PageFinish {
		return 100
	}
	return 0
}

// TieBreakFuncs builds the per-field mode comparators of a page.
func (p Page) TieBreakFuncs() map[string]formstats.TieBreak {
	if len(p.TieBreaks) == 0 {
		return nil
	}
	out := make(map[string]formstats.TieBreak, len(p.TieBreaks))
	for field, order := range p.TieBreaks {
		out[field] = formstats.PriorityTieBreak(order...)
	}
	return out
}

// AllowedModeValues returns the value lists of the page's closed mode
// fields, or nil when it has none.
func (p Page) AllowedModeValues() map[string][]string {
	if len(p.ClosedModes) == 0 {
		return nil
	}
	out := make(map[string][]string, len(p.ClosedModes))
	for _, field := range p.ClosedModes {
		out[field] = p.TieBreaks[field]
	}
	return out
}

// PatentColumns lists the metric keys stored per industry code,
// e.g. "krShare", "usShare", ...
func (c *Catalog) PatentColumns() []string {
	cols := make([]string, 0, len(c.PatentFields)*len(c.Countries))
	for _, f := range c.PatentFields {
		for _, country := range c.Countries {
			cols = append(cols, country.Code+f.Name)
		}
	}
	return cols
}

// CountryName returns the display name for a country code.
func (c *Catalog) CountryName(code string) string {
	for _, country := range c.Countries {
		if country.Code == code {
			return country.Name
		}
	}
	return code
}
