package srs

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the lesson difficulty the learner answered under.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
)

// ParseDifficulty accepts "easy" or "normal" in any case. Empty means normal.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(DifficultyNormal):
		return DifficultyNormal, nil
	case string(DifficultyEasy):
		return DifficultyEasy, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// QualityFromResponse maps observed correctness and response time to a 0..5
// quality for callers that do not collect an explicit self-rating.
func QualityFromResponse(isCorrect bool, responseTime time.Duration, difficulty Difficulty) int {
	switch {
	case !isCorrect:
		return 0
	case difficulty == DifficultyEasy && responseTime < 2*time.Second:
		return 5
	case difficulty == DifficultyEasy:
		return 4
	case responseTime < 3*time.Second:
		return 4
	case responseTime < 5*time.Second:
		return 3
	default:
		return 2
	}
}
