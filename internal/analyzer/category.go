package analyzer

import (
	"strings"

	"github.com/raphaelgruber/flowmind/internal/models"
)

// categoryRule binds a category to its keyword list. Rules are evaluated in
// order and the first rule with any keyword present wins, so a text matching
// both study and work keywords always categorizes as study.
type categoryRule struct {
	category models.Category
	keywords []string
}

// categoryRules mixes Chinese terms with their English equivalents; matching
// is case-insensitive substring containment.
var categoryRules = []categoryRule{
	{models.CategoryStudy, []string{
		"学习", "作业", "复习", "考试", "课程", "研究", "读书", "背书",
		"study", "homework", "exam", "course", "learn",
	}},
	{models.CategoryWork, []string{
		"工作", "会议", "项目", "报告", "客户", "任务", "上班", "开发",
		"work", "meeting", "project", "client",
	}},
	{models.CategoryEntertainment, []string{
		"玩", "游戏", "电影", "聚会", "旅行", "约会", "看", "听", "逛",
		"play", "game", "movie", "party",
	}},
	{models.CategoryHealth, []string{
		"锻炼", "健身", "跑步", "瑜伽", "运动", "医生", "体检",
		"exercise", "fitness", "gym", "run",
	}},
	{models.CategoryPersonal, []string{
		"购物", "家务", "清洁", "整理", "缴费", "买", "洗", "做饭",
		"shopping", "clean", "cook",
	}},
}

// Categorize classifies text into exactly one category.
// Total and deterministic: unmatched text is uncategorized.
func Categorize(text string) models.Category {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return models.CategoryUncategorized
}
