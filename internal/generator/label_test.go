package generator

import (
	"errors"
	"testing"

	"github.com/papergen/papergen-backend/internal/model"
)

func TestFormatQuestionLabel(t *testing.T) {
	tests := []struct {
		name   string
		scheme model.QuestionLabelScheme
		index  int
		want   string
	}{
		{"dot", model.QuestionLabelEndDot, 3, "Câu 3."},
		{"colon", model.QuestionLabelEndColon, 1, "Câu 1:"},
		{"parentheses", model.QuestionLabelEndParentheses, 12, "Câu 12)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatQuestionLabel(tt.scheme, tt.index)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatQuestionLabelUnknownScheme(t *testing.T) {
	_, err := FormatQuestionLabel("NOPE", 1)
	if !errors.Is(err, ErrUnknownLabelScheme) {
		t.Fatalf("want ErrUnknownLabelScheme, got %v", err)
	}
}

func TestFormatAnswerLabel(t *testing.T) {
	tests := []struct {
		name   string
		scheme model.AnswerLabelScheme
		index  int
		want   string
	}{
		{"lower dot", model.AnswerLabelLowerDot, 1, "a."},
		{"lower colon", model.AnswerLabelLowerColon, 2, "b:"},
		{"lower parentheses", model.AnswerLabelLowerParentheses, 3, "c)"},
		{"upper dot", model.AnswerLabelUpperDot, 4, "D."},
		{"upper colon", model.AnswerLabelUpperColon, 26, "Z:"},
		{"wraps past z", model.AnswerLabelLowerDot, 27, "aa."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatAnswerLabel(tt.scheme, tt.index)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatAnswerLabelUnknownScheme(t *testing.T) {
	_, err := FormatAnswerLabel("MIXED_CASE", 1)
	if !errors.Is(err, ErrUnknownLabelScheme) {
		t.Fatalf("want ErrUnknownLabelScheme, got %v", err)
	}
}

func TestFormatIsDeterministic(t *testing.T) {
	for i := 1; i <= 50; i++ {
		a, _ := FormatQuestionLabel(model.QuestionLabelEndDot, i)
		b, _ := FormatQuestionLabel(model.QuestionLabelEndDot, i)
		if a != b || a == "" {
			t.Fatalf("index %d: %q vs %q", i, a, b)
		}
	}
}
