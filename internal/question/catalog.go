package question

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// Catalog is the read-only mapping grade -> ordered question list.
// Question order within a grade is the dataset order.
type Catalog struct {
	grades  []string
	byGrade map[string][]Question
	byID    map[string]map[string]int
}

// NewCatalog normalizes grade keys, validates every question and builds the
// id index. Keys that normalize to the same grade are merged in sorted key
// order, so "pre-2" comes before "pre2". A key with an empty list still
// names a grade. The input map is not retained.
func NewCatalog(data map[string][]Question) (*Catalog, error) {
	c := &Catalog{
		byGrade: make(map[string][]Question, len(data)),
		byID:    make(map[string]map[string]int, len(data)),
	}

	for _, rawGrade := range slices.Sorted(maps.Keys(data)) {
		grade := NormalizeGrade(rawGrade)
		qs := c.byGrade[grade]
		for _, q := range data[rawGrade] {
			qs = append(qs, q.Clone())
		}
		c.byGrade[grade] = qs
	}

	if err := validateCatalog(c.byGrade); err != nil {
		return nil, err
	}

	for grade, qs := range c.byGrade {
		idx := make(map[string]int, len(qs))
		for i, q := range qs {
			idx[CanonicalID(q.ID)] = i
		}
		c.byID[grade] = idx
		c.grades = append(c.grades, grade)
	}

	slices.SortFunc(c.grades, func(a, b string) int {
		if r := cmp.Compare(gradeRank(a), gradeRank(b)); r != 0 {
			return r
		}
		return cmp.Compare(a, b)
	})

	return c, nil
}

// MustCatalog is like NewCatalog but panics on invalid data. Intended for
// tests and embedded fixtures.
func MustCatalog(data map[string][]Question) *Catalog {
	c, err := NewCatalog(data)
	if err != nil {
		panic(fmt.Sprintf("question catalog: %v", err))
	}
	return c
}

// Grades returns the grades named by the dataset, known grades first. A
// grade may have no questions.
func (c *Catalog) Grades() []string {
	return slices.Clone(c.grades)
}

// Questions returns a copy of the question list for grade. Unknown grades
// yield an empty list.
func (c *Catalog) Questions(grade string) []Question {
	qs := c.byGrade[NormalizeGrade(grade)]
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

// Len returns the number of questions for grade.
func (c *Catalog) Len(grade string) int {
	return len(c.byGrade[NormalizeGrade(grade)])
}

// Size returns the total number of questions across all grades.
func (c *Catalog) Size() int {
	n := 0
	for _, qs := range c.byGrade {
		n += len(qs)
	}
	return n
}

// Lookup finds a question by grade and id. Both id spellings ("pre2-004"
// and "pre-2-004") find the same question.
func (c *Catalog) Lookup(grade, id string) (Question, bool) {
	grade = NormalizeGrade(grade)
	i, ok := c.byID[grade][CanonicalID(id)]
	if !ok {
		return Question{}, false
	}
	return c.byGrade[grade][i].Clone(), true
}

// RecoverSource returns q's source, falling back to the dataset entry with
// the same id under the grade encoded in the id. The result is for display
// only; q is not modified.
func (c *Catalog) RecoverSource(q Question) string {
	if q.Source != "" {
		return q.Source
	}
	if orig, ok := c.Lookup(GradeFromID(q.ID), q.ID); ok {
		return orig.Source
	}
	return ""
}
