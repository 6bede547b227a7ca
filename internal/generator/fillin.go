package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/papergen/papergen-backend/internal/model"
)

var (
	// ErrInvalidFillInFormat covers placeholder layout violations in fill-in
	// content or answer values.
	ErrInvalidFillInFormat = errors.New("invalid fill-in format")

	// ErrTooManyDistractors is returned when the requested distractor count
	// exceeds the number of distinct permutations of the blank segments.
	ErrTooManyDistractors = errors.New("too many distractors requested")
)

// Random rejection sampling gives up after this many misses per distractor
// and falls back to deterministic permutation enumeration. Without the
// fallback the loop could spin unboundedly when quantity approaches k!-1.
const distractorRetryBudget = 32

// SplitBlanks splits a fill-in answer value into its blank segments.
// The value must not start or end with the placeholder, and every gap between
// placeholders must contain at least one character.
func SplitBlanks(value string) ([]string, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: empty value", ErrInvalidFillInFormat)
	}
	if strings.HasPrefix(value, model.BlankPlaceholder) || strings.HasSuffix(value, model.BlankPlaceholder) {
		return nil, fmt.Errorf("%w: value starts or ends with %s", ErrInvalidFillInFormat, model.BlankPlaceholder)
	}
	if strings.Contains(value, model.BlankPlaceholder+model.BlankPlaceholder) {
		return nil, fmt.Errorf("%w: consecutive %s placeholders", ErrInvalidFillInFormat, model.BlankPlaceholder)
	}
	return strings.Split(value, model.BlankPlaceholder), nil
}

// CountBlanks counts the blank placeholders in question content.
func CountBlanks(content string) int {
	return strings.Count(content, model.BlankPlaceholder)
}

// ValidateFillIn checks that the blank count in the question content matches
// the blank count of the correct answer's value.
func ValidateFillIn(content, correctValue string) error {
	segments, err := SplitBlanks(correctValue)
	if err != nil {
		return err
	}
	if blanks := CountBlanks(content); blanks != len(segments) {
		return fmt.Errorf("%w: content has %d blanks, answer has %d segments",
			ErrInvalidFillInFormat, blanks, len(segments))
	}
	return nil
}

// Distractors produces quantity distinct wrong answer values for a fill-in
// question by permuting the correct value's blank segments. At most k!-1
// permutations differ from the correct one (k = segment count).
//
// It first tries random shuffles; once the retry budget runs out it walks the
// remaining permutations in lexicographic order so a near-exhaustive request
// still terminates.
func Distractors(r *rand.Rand, correctValue string, quantity int) ([]string, error) {
	segments, err := SplitBlanks(correctValue)
	if err != nil {
		return nil, err
	}

	k := len(segments)
	if max := factorial(k) - 1; quantity > max {
		return nil, fmt.Errorf("%w: want %d, at most %d permutations of %d segments",
			ErrTooManyDistractors, quantity, max, k)
	}

	seen := map[string]bool{correctValue: true}
	out := make([]string, 0, quantity)

	misses := 0
	perm := make([]string, k)
	for len(out) < quantity && misses < distractorRetryBudget*quantity {
		copy(perm, segments)
		Shuffle(r, perm)
		candidate := strings.Join(perm, model.BlankPlaceholder)
		if seen[candidate] {
			misses++
			continue
		}
		seen[candidate] = true
		out = append(out, candidate)
	}
	if len(out) == quantity {
		return out, nil
	}

	// Deterministic sweep over every permutation for the remainder.
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	sort.Ints(idx)
	for {
		candidate := joinByIndex(segments, idx)
		if !seen[candidate] {
			seen[candidate] = true
			out = append(out, candidate)
			if len(out) == quantity {
				return out, nil
			}
		}
		if !nextPermutation(idx) {
			break
		}
	}

	// Reachable only when repeated segments collapse permutations into fewer
	// distinct values than k!-1.
	return nil, fmt.Errorf("%w: only %d distinct permutations exist", ErrTooManyDistractors, len(out))
}

func joinByIndex(segments []string, idx []int) string {
	parts := make([]string, len(idx))
	for i, j := range idx {
		parts[i] = segments[j]
	}
	return strings.Join(parts, model.BlankPlaceholder)
}

// nextPermutation advances idx to its next lexicographic permutation,
// returning false after the last one.
func nextPermutation(idx []int) bool {
	i := len(idx) - 2
	for i >= 0 && idx[i] >= idx[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(idx) - 1
	for idx[j] <= idx[i] {
		j--
	}
	idx[i], idx[j] = idx[j], idx[i]
	for l, r := i+1, len(idx)-1; l < r; l, r = l+1, r-1 {
		idx[l], idx[r] = idx[r], idx[l]
	}
	return true
}

// factorial saturates instead of overflowing; segment counts beyond 20 are
// effectively unbounded for distractor purposes.
func factorial(n int) int {
	if n > 20 {
		return int(^uint(0) >> 1)
	}
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}
