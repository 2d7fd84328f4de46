// Package filter derives the ordered candidate question list for a session
// from the grade's question list and the user's settings.
package filter

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/eiken-drill/eiken/internal/question"
)

// ErrEmptyFilterResult is returned when no question survives filtering.
var ErrEmptyFilterResult = errors.New("no questions match the current settings")

// Order selects how the filtered list is ordered.
type Order string

const (
	// OrderSequential keeps dataset order.
	OrderSequential Order = "sequential"
	// OrderRandom applies a Fisher-Yates shuffle to a copy.
	OrderRandom Order = "random"
)

// AllYears and AllCount are the "no filter" values.
const (
	AllYears = "all"
	AllCount = "all"
)

// Settings are the raw filter inputs. Range and count are kept as typed so
// that malformed input degrades to "no filter" instead of failing.
type Settings struct {
	Year       string
	RangeStart string
	RangeEnd   string
	Order      Order
	Count      string
}

// DefaultSettings returns the settings shown when a grade is selected.
func DefaultSettings() Settings {
	return Settings{
		Year:  AllYears,
		Order: OrderSequential,
		Count: AllCount,
	}
}

// String renders the settings compactly for logs and session events.
func (s Settings) String() string {
	year := s.Year
	if year == "" {
		year = AllYears
	}
	count := s.Count
	if count == "" {
		count = AllCount
	}
	order := s.Order
	if order == "" {
		order = OrderSequential
	}
	return fmt.Sprintf("year=%s range=%s-%s order=%s count=%s", year, s.RangeStart, s.RangeEnd, order, count)
}

// Limit returns the truncation limit. ok is false when the count means
// "all": the literal "all", unparseable input or a value <= 0.
func (s Settings) Limit() (limit int, ok bool) {
	if s.Count == "" || s.Count == AllCount {
		return 0, false
	}
	n, valid := ParseBound(s.Count)
	if !valid || n <= 0 {
		return 0, false
	}
	return n, true
}

// Matching applies the year and range filters only. It is what the settings
// screen shows as the live available count.
func Matching(qs []question.Question, s Settings) []question.Question {
	out := make([]question.Question, 0, len(qs))

	year := s.Year
	filterYear := year != "" && year != AllYears

	start, hasStart := ParseBound(s.RangeStart)
	end, hasEnd := ParseBound(s.RangeEnd)
	filterRange := hasStart || hasEnd
	if !hasStart {
		start = math.MinInt
	}
	if !hasEnd {
		end = math.MaxInt
	}

	for _, q := range qs {
		if filterYear && q.Source != year {
			continue
		}
		if filterRange {
			if n, ok := IDSuffix(q.ID); ok && (n < start || n > end) {
				continue
			}
		}
		out = append(out, q)
	}
	return out
}

// Apply filters by year then range, orders, and truncates to the count.
// The input slice is never modified. Returns ErrEmptyFilterResult when the
// filters leave nothing.
func Apply(qs []question.Question, s Settings, rng *rand.Rand) ([]question.Question, error) {
	out := Matching(qs, s)
	if len(out) == 0 {
		return nil, ErrEmptyFilterResult
	}

	if s.Order == OrderRandom {
		Shuffle(rng, out)
	}

	if limit, ok := s.Limit(); ok && len(out) > limit {
		out = slices.Clip(out[:limit])
	}
	return out, nil
}

// Years returns the distinct non-empty sources of qs in sorted order.
func Years(qs []question.Question) []string {
	seen := make(map[string]bool)
	var years []string
	for _, q := range qs {
		if q.Source == "" || seen[q.Source] {
			continue
		}
		seen[q.Source] = true
		years = append(years, q.Source)
	}
	slices.Sort(years)
	return years
}

// Shuffle permutes items in place with the Fisher-Yates algorithm: for i
// from the last index down to 1, swap items[i] with items[j], j uniform in
// [0, i].
func Shuffle[T any](rng *rand.Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// IDSuffix parses the leading integer of the last '-' separated token of
// id. "2-045" is 45; "pre-2-010" is 10; "2-abc" is not a number.
func IDSuffix(id string) (int, bool) {
	token := id
	if i := strings.LastIndexByte(id, '-'); i >= 0 {
		token = id[i+1:]
	}
	return ParseBound(token)
}

// ParseBound parses a leading, optionally signed, base-10 integer after
// optional leading whitespace. Trailing garbage is ignored: "12abc" is 12.
// Values that overflow saturate.
func ParseBound(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		if s[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	return n, true
}
