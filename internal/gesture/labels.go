package gesture

import (
	"cmp"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ErrUnknownClass is returned when a class index or label is not part of the fitted set.
var ErrUnknownClass = errors.New("unknown class")

// LabelEncoder maps between class indices produced by the classifier and the
// human-readable labels it was trained on. Classes are the sorted set of
// distinct training labels, so fitting the same labels always yields the same order.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// FitLabels builds a LabelEncoder from the training labels. Classes are
// ordered lexically.
func FitLabels(labels []string) (*LabelEncoder, error) {
	return fit(labels, strings.Compare)
}

// FitNumericLabels builds a LabelEncoder from integer training labels written
// in decimal. Classes are ordered by value, so "2" precedes "10".
func FitNumericLabels(labels []string) (*LabelEncoder, error) {
	for _, l := range labels {
		if !decimalRe.MatchString(l) {
			return nil, fmt.Errorf("label %q is not a decimal integer", l)
		}
	}
	return fit(labels, compareDecimal)
}

var decimalRe = regexp.MustCompile(`^(0|-?[1-9][0-9]*)$`)

func fit(labels []string, compare func(a, b string) int) (*LabelEncoder, error) {
	if len(labels) == 0 {
		return nil, errors.New("no labels to fit")
	}

	seen := make(map[string]struct{}, len(labels))
	classes := make([]string, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		classes = append(classes, l)
	}
	slices.SortFunc(classes, compare)

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	return &LabelEncoder{classes: classes, index: index}, nil
}

// compareDecimal orders canonical decimal integers of any width by value.
func compareDecimal(a, b string) int {
	aNeg, bNeg := strings.HasPrefix(a, "-"), strings.HasPrefix(b, "-")
	switch {
	case aNeg && !bNeg:
		return -1
	case !aNeg && bNeg:
		return 1
	case aNeg && bNeg:
		return compareMagnitude(b[1:], a[1:])
	}
	return compareMagnitude(a, b)
}

func compareMagnitude(a, b string) int {
	if len(a) != len(b) {
		return cmp.Compare(len(a), len(b))
	}
	return strings.Compare(a, b)
}

// Decode returns the label for a class index.
func (e *LabelEncoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(e.classes) {
		return "", fmt.Errorf("%w: index %d of %d", ErrUnknownClass, i, len(e.classes))
	}
	return e.classes[i], nil
}

// Encode returns the class index for a label.
func (e *LabelEncoder) Encode(label string) (int, error) {
	i, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownClass, label)
	}
	return i, nil
}

// Classes returns a copy of the fitted classes in index order.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// Len returns the number of classes.
func (e *LabelEncoder) Len() int {
	return len(e.classes)
}
