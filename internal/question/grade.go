package question

import (
	"slices"
	"strings"
)

// ReviewGrade is the pseudo-grade used for mistake review sessions.
const ReviewGrade = "review"

// KnownGrades lists the supported grades in ascending difficulty.
var KnownGrades = []string{"3", "pre-2", "2", "pre-1", "1"}

var displayNames = map[string]string{
	"3":         "3級",
	"pre-2":     "準2級",
	"2":         "2級",
	"pre-1":     "準1級",
	"1":         "1級",
	ReviewGrade: "復習 (Review)",
}

// NormalizeGrade maps the legacy "preN" spelling to "pre-N". Other values
// are returned trimmed and lowercased.
func NormalizeGrade(grade string) string {
	g := strings.ToLower(strings.TrimSpace(grade))
	if rest, ok := strings.CutPrefix(g, "pre"); ok && rest != "" && rest[0] != '-' {
		return "pre-" + rest
	}
	return g
}

// GradeFromID derives the normalized grade encoded in a question id.
// "2-045" is "2"; both "pre-2-010" and "pre2-010" are "pre-2".
func GradeFromID(id string) string {
	parts := strings.Split(id, "-")
	grade := parts[0]
	if grade == "pre" && len(parts) > 1 {
		grade = "pre-" + parts[1]
	}
	return NormalizeGrade(grade)
}

// CanonicalID rewrites the grade part of id to its normalized spelling:
// "pre2-004" becomes "pre-2-004". Ids without a number part are returned
// unchanged.
func CanonicalID(id string) string {
	i := strings.LastIndex(id, "-")
	if i <= 0 {
		return id
	}
	return GradeFromID(id) + id[i:]
}

// DisplayName returns the human label for a grade, or the grade itself when
// it is not a known one.
func DisplayName(grade string) string {
	if name, ok := displayNames[NormalizeGrade(grade)]; ok {
		return name
	}
	return grade
}

// gradeRank orders known grades first in KnownGrades order.
func gradeRank(grade string) int {
	if i := slices.Index(KnownGrades, grade); i >= 0 {
		return i
	}
	return len(KnownGrades)
}
