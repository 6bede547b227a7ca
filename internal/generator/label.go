package generator

import (
	"errors"
	"fmt"

	"github.com/papergen/papergen-backend/internal/model"
)

// ErrUnknownLabelScheme is returned for a label scheme outside the closed
// enums. This signals a programming or config error, not bad user input.
var ErrUnknownLabelScheme = errors.New("unknown label scheme")

// FormatQuestionLabel renders the label of the index-th question (1-based)
// on a paper, e.g. END_DOT at 3 renders "Câu 3.".
func FormatQuestionLabel(scheme model.QuestionLabelScheme, index int) (string, error) {
	var suffix string
	switch scheme {
	case model.QuestionLabelEndDot:
		suffix = "."
	case model.QuestionLabelEndColon:
		suffix = ":"
	case model.QuestionLabelEndParentheses:
		suffix = ")"
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLabelScheme, scheme)
	}
	return fmt.Sprintf("Câu %d%s", index, suffix), nil
}

// FormatAnswerLabel renders the label of the index-th answer choice
// (1-based), e.g. LOWER_PARENTHESES at 2 renders "b)".
func FormatAnswerLabel(scheme model.AnswerLabelScheme, index int) (string, error) {
	var upper bool
	var suffix string
	switch scheme {
	case model.AnswerLabelLowerDot:
		suffix = "."
	case model.AnswerLabelLowerColon:
		suffix = ":"
	case model.AnswerLabelLowerParentheses:
		suffix = ")"
	case model.AnswerLabelUpperDot:
		upper, suffix = true, "."
	case model.AnswerLabelUpperColon:
		upper, suffix = true, ":"
	case model.AnswerLabelUpperParentheses:
		upper, suffix = true, ")"
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLabelScheme, scheme)
	}
	return letterFor(index, upper) + suffix, nil
}

// letterFor converts a 1-based index to a bijective base-26 letter sequence:
// 1→a, 26→z, 27→aa.
func letterFor(index int, upper bool) string {
	base := byte('a')
	if upper {
		base = 'A'
	}
	var out []byte
	for index > 0 {
		index--
		out = append([]byte{base + byte(index%26)}, out...)
		index /= 26
	}
	return string(out)
}
