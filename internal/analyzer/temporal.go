package analyzer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateFamily is one date-expression pattern family. Families are evaluated
// in a fixed order; the first family whose pattern matches wins, and only the
// first match within that family is used. resolve may report no concrete
// date even for a successful match (the matched text is still stripped).
type dateFamily struct {
	name    string
	pattern *regexp.Regexp
	resolve func(match []string, now time.Time) (time.Time, bool)
}

// dateFamilies in priority order: numeric M.D / M/D / M-D, CJK M月D日,
// relative keywords, weekday names.
var dateFamilies = []dateFamily{
	{
		name:    "numeric",
		pattern: regexp.MustCompile(`(\d{1,2})([./-])(\d{1,2})`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			month, _ := strconv.Atoi(m[1])
			day, _ := strconv.Atoi(m[3])
			if month < 1 || day < 1 || month > 12 || day > 31 {
				return time.Time{}, false
			}
			return time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location()), true
		},
	},
	{
		name:    "cjk",
		pattern: regexp.MustCompile(`(\d{1,2})月(\d{1,2})日?`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			month, _ := strconv.Atoi(m[1])
			day, _ := strconv.Atoi(m[2])
			if month > 12 || day > 31 {
				return time.Time{}, false
			}
			// time.Date normalizes month 0 and day 0, same as the source
			// this rule set was ported from.
			return time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location()), true
		},
	},
	{
		name:    "relative",
		pattern: regexp.MustCompile(`今天|明天|后天`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			// Resolved from the clock instant, not midnight: the captured
			// value keeps the time of day, and days-until-due math ceils
			// the raw difference.
			switch m[0] {
			case "今天":
				return now, true
			case "明天":
				return now.AddDate(0, 0, 1), true
			default: // 后天
				return now.AddDate(0, 0, 2), true
			}
		},
	},
	{
		name:    "weekday",
		pattern: regexp.MustCompile(`周[一二三四五六日]`),
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			// Weekday names are recognized and stripped but never resolve
			// to a concrete date. Kept as-is deliberately.
			return time.Time{}, false
		},
	},
}

// separatorCutset is the leading/trailing junk removed from the remaining
// text after a date expression is cut out.
const separatorCutset = "，, \t\r\n"

// ExtractDate scans text for a date expression. On a match the expression is
// removed from the text and the resolved date (if any) returned; otherwise
// the text comes back unchanged apart from whitespace trimming. Separator
// punctuation is only cut around a stripped date expression.
func ExtractDate(text string, now time.Time) (*time.Time, string) {
	for _, family := range dateFamilies {
		loc := family.pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}

		match := make([]string, 0, family.pattern.NumSubexp()+1)
		for i := 0; i <= family.pattern.NumSubexp(); i++ {
			if loc[2*i] < 0 {
				match = append(match, "")
				continue
			}
			match = append(match, text[loc[2*i]:loc[2*i+1]])
		}

		remaining := strings.Trim(text[:loc[0]]+text[loc[1]:], separatorCutset)

		if due, ok := family.resolve(match, now); ok {
			return &due, remaining
		}
		// Matched but unresolvable (weekday, out-of-range numerics): the
		// expression is still stripped, there is just no due date.
		return nil, remaining
	}

	return nil, strings.TrimSpace(text)
}

// DaysUntil computes the ceiling of the raw difference between a due date
// and now, in days. Due dates carrying a time-of-day component (relative
// dates) round accordingly.
func DaysUntil(due, now time.Time) int {
	hours := due.Sub(now).Hours()
	days := int(hours / 24)
	if hours > float64(days)*24 {
		days++
	}
	return days
}
