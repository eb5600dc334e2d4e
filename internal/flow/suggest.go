package flow

import (
	"sort"

	"github.com/raphaelgruber/flowmind/internal/models"
)

// DefaultSuggestionLimit caps the schedule suggestion list.
const DefaultSuggestionLimit = 5

// Suggestions returns the incomplete tasks the user should tackle next:
// highest priority first, ties broken by nearest due date, dated tasks
// before undated ones. limit <= 0 uses DefaultSuggestionLimit.
func (s *Store) Suggestions(limit int) []models.Task {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	tasks := s.Tasks()

	incomplete := tasks[:0]
	for _, t := range tasks {
		if !t.Completed {
			incomplete = append(incomplete, t)
		}
	}

	sort.SliceStable(incomplete, func(i, j int) bool {
		a, b := incomplete[i], incomplete[j]
		if wa, wb := models.PriorityWeight(a.Priority), models.PriorityWeight(b.Priority); wa != wb {
			return wa > wb
		}
		switch {
		case a.DueDate != nil && b.DueDate != nil:
			return a.DueDate.Before(*b.DueDate)
		case a.DueDate != nil:
			return true
		default:
			return false
		}
	})

	if len(incomplete) > limit {
		incomplete = incomplete[:limit]
	}
	return incomplete
}
