package model

// Level enumerates question difficulty levels.
type Level string

const (
	LevelEasy   Level = "EASY"
	LevelMedium Level = "MEDIUM"
	LevelHard   Level = "HARD"
)

// Valid reports whether l is a known difficulty level.
func (l Level) Valid() bool {
	switch l {
	case LevelEasy, LevelMedium, LevelHard:
		return true
	}
	return false
}

// DisplayName returns the human-readable level name used in messages.
func (l Level) DisplayName() string {
	switch l {
	case LevelEasy:
		return "Dễ"
	case LevelMedium:
		return "Trung bình"
	case LevelHard:
		return "Khó"
	}
	return string(l)
}
