package analyzer

import (
	"strings"
	"time"

	"github.com/raphaelgruber/flowmind/internal/models"
)

// urgencyKeywords force high priority regardless of due date.
var urgencyKeywords = []string{"紧急", "重要", "urgent", "important", "急", "马上", "立即"}

// importantContextKeywords raise otherwise-low entries to medium.
var importantContextKeywords = []string{"考试", "会议", "作业", "exam", "meeting", "deadline"}

// ResolvePriority assigns exactly one priority from the due-date window and
// urgency keywords. A due date further than 7 days out does not force low
// priority: keyword rules still apply below the window.
func ResolvePriority(text string, due *time.Time, now time.Time) models.Priority {
	if due != nil {
		switch days := DaysUntil(*due, now); {
		case days <= 0:
			return models.PriorityHigh // overdue or due today
		case days <= 2:
			return models.PriorityHigh
		case days <= 7:
			return models.PriorityMedium
		}
	}

	lower := strings.ToLower(text)
	for _, keyword := range urgencyKeywords {
		if strings.Contains(lower, keyword) {
			return models.PriorityHigh
		}
	}
	for _, keyword := range importantContextKeywords {
		if strings.Contains(lower, keyword) {
			return models.PriorityMedium
		}
	}
	return models.PriorityLow
}
