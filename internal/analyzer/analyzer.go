// Package analyzer implements the smart-entry analysis pipeline: temporal
// extraction, categorization, keyword/entity extraction and priority scoring
// over one free-text input. All functions are pure; the caller supplies the
// clock instant so results are reproducible.
package analyzer

import (
	"errors"
	"strings"
	"time"

	"github.com/raphaelgruber/flowmind/internal/models"
)

// ErrEmptyInput signals that the input contained nothing to analyze.
// Callers must check for it before using the result.
var ErrEmptyInput = errors.New("empty input: no entry produced")

// Result is the outcome of analyzing one input. It carries everything an
// entry record needs except identity and timestamps, which the owning store
// assigns.
type Result struct {
	OriginalText string
	CleanText    string
	DueDate      *time.Time
	Category     models.Category
	Priority     models.Priority
	Keywords     []string
	Entities     models.Entities
}

// Analyze runs the full pipeline over one input:
// date extraction, categorization, keyword/entity extraction, priority.
func Analyze(input string, now time.Time) (Result, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Result{}, ErrEmptyInput
	}

	due, clean := ExtractDate(text, now)

	return Result{
		OriginalText: text,
		CleanText:    clean,
		DueDate:      due,
		Category:     Categorize(clean),
		Priority:     ResolvePriority(clean, due, now),
		Keywords:     Keywords(clean),
		Entities:     Entities(clean),
	}, nil
}

// TaskLine is one parsed line of a batch task input.
type TaskLine struct {
	Text     string
	DueDate  *time.Time
	Category models.Category
	Priority models.Priority
}

// ParseTasks parses a multi-task input: lines separated by ';' or newlines,
// each run through date extraction, categorization and priority scoring.
// Lines that are empty after date stripping are skipped.
func ParseTasks(input string, now time.Time) []TaskLine {
	lines := strings.FieldsFunc(input, func(r rune) bool {
		return r == ';' || r == '\n'
	})

	var tasks []TaskLine
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		due, text := ExtractDate(line, now)
		// Batch lines also shed leading/trailing separator punctuation,
		// unlike single-entry analysis which keeps it when no date matched.
		text = strings.Trim(text, separatorCutset)
		if text == "" {
			continue
		}

		tasks = append(tasks, TaskLine{
			Text:     text,
			DueDate:  due,
			Category: Categorize(text),
			Priority: ResolvePriority(text, due, now),
		})
	}
	return tasks
}
