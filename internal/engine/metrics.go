package engine

import (
	"math"
	"time"
)

// Metrics is the continuously updated performance record for a session.
type Metrics struct {
	WPM             float64
	Accuracy        float64
	CorrectCount    int
	IncorrectCount  int
	TotalKeystrokes int
	Elapsed         time.Duration
	Status          Status
}

// WPM computes words per minute, one word being five correct characters.
// It is 0 when no active time has accrued.
func WPM(correct int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	minutes := elapsed.Minutes()
	return (float64(correct) / 5.0) / minutes
}

// Accuracy is the fraction of accepted keystrokes that were correct.
// With no keystrokes it is defined as 1.0.
func Accuracy(correct, incorrect int) float64 {
	total := correct + incorrect
	if total == 0 {
		return 1.0
	}
	return float64(correct) / float64(total)
}

// Breakdown reports keystroke counts with their shares of the total,
// as percentages rounded to one decimal.
type Breakdown struct {
	Correct      int
	Incorrect    int
	Total        int
	CorrectPct   float64
	IncorrectPct float64
}

// KeystrokeBreakdown splits accepted keystrokes into correct and incorrect
// shares. With no keystrokes both percentages are 0.
func KeystrokeBreakdown(correct, incorrect int) Breakdown {
	b := Breakdown{Correct: correct, Incorrect: incorrect, Total: correct + incorrect}
	if b.Total > 0 {
		b.CorrectPct = roundPct(float64(correct) / float64(b.Total) * 100)
		b.IncorrectPct = roundPct(float64(incorrect) / float64(b.Total) * 100)
	}
	return b
}

func roundPct(v float64) float64 {
	return math.Round(v*10) / 10
}
