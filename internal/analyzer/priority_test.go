package analyzer

import (
	"testing"
	"time"

	"github.com/raphaelgruber/flowmind/internal/models"
)

func TestResolvePriority(t *testing.T) {
	tests := []struct {
		name string
		text string
		due  *time.Time
		want models.Priority
	}{
		{"overdue", "交作业", ptr(date(time.August, 28)), models.PriorityHigh},
		{"due tomorrow", "普通事情", ptr(date(time.August, 30)), models.PriorityHigh},
		{"due within two days", "普通事情", ptr(date(time.August, 31)), models.PriorityHigh},
		{"due within a week", "普通事情", ptr(date(time.September, 4)), models.PriorityMedium},
		{"far future falls through to low", "普通事情", ptr(date(time.October, 1)), models.PriorityLow},
		{"far future with urgency keyword", "紧急处理", ptr(date(time.October, 1)), models.PriorityHigh},
		{"urgency keyword no date", "马上处理", nil, models.PriorityHigh},
		{"urgency keyword english", "URGENT fix", nil, models.PriorityHigh},
		{"important context", "准备会议材料", nil, models.PriorityMedium},
		{"important context english", "project deadline", nil, models.PriorityMedium},
		{"plain text", "随便说说", nil, models.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePriority(tt.text, tt.due, testNow); got != tt.want {
				t.Errorf("ResolvePriority(%q, %v) = %q, want %q", tt.text, tt.due, got, tt.want)
			}
		})
	}
}
