// Package categorizer assigns spending categories to transactions by keyword
// matching against an ordered classification table.
package categorizer

import (
	"strings"

	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"
)

type category struct {
	name     string
	keywords []string
}

// Table is an ordered mapping from category name to lower-cased keywords.
// Declaration order is significant: when a description contains keywords of
// several categories, the first declared category wins.
//
// A Table is immutable after construction and safe for concurrent use.
type Table struct {
	categories []category
}

// NewTable builds a Table from category configs, preserving their order.
// Keywords are trimmed and lower-cased; blank keywords are skipped.
// Blank or duplicate category names are rejected.
func NewTable(configs []models.CategoryConfig) (*Table, error) {
	t := &Table{categories: make([]category, 0, len(configs))}
	seen := make(map[string]bool, len(configs))

	for _, cfg := range configs {
		name := strings.TrimSpace(cfg.Name)
		if name == "" {
			return nil, parsererror.NewConfigError("category name", cfg.Name, "must not be blank")
		}
		if seen[name] {
			return nil, parsererror.NewConfigError("category name", name, "declared more than once")
		}
		if name == models.Unclassified {
			return nil, parsererror.NewConfigError("category name", name, "reserved for unmatched transactions")
		}
		seen[name] = true

		c := category{name: name}
		for _, kw := range cfg.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			c.keywords = append(c.keywords, kw)
		}
		t.categories = append(t.categories, c)
	}

	return t, nil
}

// Categories returns the category names in declaration order.
func (t *Table) Categories() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.name
	}
	return names
}

// Len returns the number of categories.
func (t *Table) Len() int {
	return len(t.categories)
}

// Keywords returns a copy of the keywords of a category, nil if unknown.
func (t *Table) Keywords(name string) []string {
	for _, c := range t.categories {
		if c.name == name {
			return append([]string(nil), c.keywords...)
		}
	}
	return nil
}

// Match returns the first category having a keyword contained in description,
// or models.Unclassified.
func (t *Table) Match(description string) string {
	category, _ := t.match(description)
	return category
}

// match also returns the keyword that decided the match.
func (t *Table) match(description string) (string, string) {
	desc := strings.ToLower(description)
	for _, c := range t.categories {
		for _, kw := range c.keywords {
			if strings.Contains(desc, kw) {
				return c.name, kw
			}
		}
	}
	return models.Unclassified, ""
}
