// Package version parses and compares skill version strings.
//
// Tags come in heterogeneous shapes ("v1.2.0", "1.2", "1.10.0-rc1", "release-7").
// They are reduced to tuples of non-negative integers: a leading "v" and
// anything from the first "-" or "+" are dropped, then every maximal digit
// run is taken in order. Tuples of different lengths are compared after
// right-padding the shorter one with zeros, so "1.0" and "1.0.0" are equal.
//
// Two parsers exist because two call sites historically disagree on the
// tuple returned for a string without digits: Parse yields (0,0,0) for
// general normalization and ParseTag yields (0) for tag sorting. Keep them
// distinct; merging them changes how digitless tags sort against real ones.
package version

import (
	"regexp"
	"strconv"
	"strings"
)

// Ordering is the result of comparing an installed version with a latest version.
type Ordering int

const (
	// Incomparable means one side is unknown.
	Incomparable Ordering = iota
	// Less means installed < latest (update available).
	Less
	// Equal means installed == latest (up to date).
	Equal
	// Greater means installed > latest (newer than remote).
	Greater
)

// String implements fmt.Stringer.
func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "incomparable"
	}
}

var digitRuns = regexp.MustCompile(`\d+`)

// Normalize trims whitespace and a leading "v".
func Normalize(v string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "v"))
}

// Parse converts a version string into a numeric tuple.
// Strings without digits yield (0,0,0).
func Parse(v string) []int {
	return parse(v, []int{0, 0, 0})
}

// ParseTag converts a tag name into a numeric tuple for sorting.
// Tags without digits yield (0).
func ParseTag(tag string) []int {
	return parse(tag, []int{0})
}

func parse(v string, fallback []int) []int {
	s := Normalize(v)
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}

	runs := digitRuns.FindAllString(s, -1)
	if len(runs) == 0 {
		return fallback
	}

	parts := make([]int, 0, len(runs))
	for _, r := range runs {
		n, err := strconv.Atoi(r)
		if err != nil {
			// Only overflow can fail here; clamp instead of dropping the component.
			n = int(^uint(0) >> 1)
		}
		parts = append(parts, n)
	}
	return parts
}

// CompareTuples compares two numeric tuples after zero-padding.
// It returns -1, 0 or 1.
func CompareTuples(a, b []int) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

// Compare orders an installed version against a latest version.
// An empty string stands for an unknown version and yields Incomparable.
func Compare(installed, latest string) Ordering {
	if installed == "" || latest == "" {
		return Incomparable
	}

	switch CompareTuples(Parse(installed), Parse(latest)) {
	case -1:
		return Less
	case 1:
		return Greater
	default:
		return Equal
	}
}

// IsUpdateAvailable reports whether latest is strictly newer than installed.
// It is false when either side is unknown; callers that need "not installed
// means install" must check the installation itself.
func IsUpdateAvailable(installed, latest string) bool {
	return Compare(installed, latest) == Less
}

// Format renders a version for display, "-" when unknown.
func Format(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
