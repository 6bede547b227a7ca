package model

// QuestionLabelScheme enumerates the numbering styles for questions on a
// generated paper ("Câu 1.", "Câu 1:", "Câu 1)").
type QuestionLabelScheme string

const (
	QuestionLabelEndDot         QuestionLabelScheme = "END_DOT"
	QuestionLabelEndColon       QuestionLabelScheme = "END_COLON"
	QuestionLabelEndParentheses QuestionLabelScheme = "END_PARENTHESES"
)

// AnswerLabelScheme enumerates the lettering styles for answer choices
// ("a.", "A:", "b)").
type AnswerLabelScheme string

const (
	AnswerLabelLowerDot         AnswerLabelScheme = "LOWER_DOT"
	AnswerLabelLowerColon       AnswerLabelScheme = "LOWER_COLON"
	AnswerLabelLowerParentheses AnswerLabelScheme = "LOWER_PARENTHESES"
	AnswerLabelUpperDot         AnswerLabelScheme = "UPPER_DOT"
	AnswerLabelUpperColon       AnswerLabelScheme = "UPPER_COLON"
	AnswerLabelUpperParentheses AnswerLabelScheme = "UPPER_PARENTHESES"
)
