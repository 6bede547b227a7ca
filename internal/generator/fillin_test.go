package generator

import (
	"errors"
	"strings"
	"testing"

	"github.com/papergen/papergen-backend/internal/model"
)

func TestSplitBlanks(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    []string
		wantErr bool
	}{
		{"single blank", "cat", []string{"cat"}, false},
		{"two blanks", "cat[__]mat", []string{"cat", "mat"}, false},
		{"three blanks", "a[__]b[__]c", []string{"a", "b", "c"}, false},
		{"leading placeholder", "[__]cat", nil, true},
		{"trailing placeholder", "cat[__]", nil, true},
		{"consecutive placeholders", "cat[__][__]mat", nil, true},
		{"empty", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitBlanks(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFillInFormat) {
					t.Fatalf("want ErrInvalidFillInFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValidateFillIn(t *testing.T) {
	if err := ValidateFillIn("The [__] sat on the [__]", "cat[__]mat"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateFillIn("The [__] sat", "cat[__]mat"); !errors.Is(err, ErrInvalidFillInFormat) {
		t.Fatalf("want ErrInvalidFillInFormat on blank count mismatch, got %v", err)
	}
}

func TestDistractorsBound(t *testing.T) {
	r := NewRand(1, 2)

	// k=3 → at most 3!-1 = 5 distractors.
	if _, err := Distractors(r, "a[__]b[__]c", 6); !errors.Is(err, ErrTooManyDistractors) {
		t.Fatalf("want ErrTooManyDistractors, got %v", err)
	}
	if _, err := Distractors(r, "a[__]b[__]c", 5); err != nil {
		t.Fatalf("quantity at the bound should succeed, got %v", err)
	}
}

func TestDistractorsDistinctAndWrong(t *testing.T) {
	const correct = "mot[__]hai[__]ba[__]bon"
	r := NewRand(7, 7)

	got, err := Distractors(r, correct, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("got %d distractors, want 10", len(got))
	}

	seen := map[string]bool{}
	for _, d := range got {
		if d == correct {
			t.Errorf("distractor equals correct value: %q", d)
		}
		if seen[d] {
			t.Errorf("duplicate distractor: %q", d)
		}
		seen[d] = true

		// Same multiset of segments, same placeholder count.
		if strings.Count(d, model.BlankPlaceholder) != 3 {
			t.Errorf("distractor %q lost placeholders", d)
		}
	}
}

func TestDistractorsExhaustive(t *testing.T) {
	// k=3 requesting all 5 permutations exercises the enumeration fallback.
	r := NewRand(3, 9)
	got, err := Distractors(r, "x[__]y[__]z", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d, want 5", len(got))
	}
}

func TestDistractorsRepeatedSegments(t *testing.T) {
	// "a","a","b" has only 3 distinct arrangements, so just 2 wrong ones —
	// fewer than the 3!-1 = 5 the factorial bound admits.
	r := NewRand(11, 13)
	if _, err := Distractors(r, "a[__]a[__]b", 4); !errors.Is(err, ErrTooManyDistractors) {
		t.Fatalf("want ErrTooManyDistractors for collapsed permutations, got %v", err)
	}
	got, err := Distractors(r, "a[__]a[__]b", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d, want 2", len(got))
	}
}
