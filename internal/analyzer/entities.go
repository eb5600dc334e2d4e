package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/raphaelgruber/flowmind/internal/models"
)

// keywordDelims are the token separators for keyword extraction, covering
// both ASCII and full-width punctuation.
const keywordDelims = " \t\r\n，,。.！!？?；;：:"

// stopwords are high-frequency function words excluded from keywords.
var stopwords = map[string]struct{}{
	"的": {}, "了": {}, "在": {}, "是": {}, "有": {},
	"和": {}, "与": {}, "跟": {}, "及": {}, "以及": {},
}

// Keywords tokenizes text into keywords: split on delimiters, drop
// single-rune tokens and stopwords, dedupe preserving first-seen order.
func Keywords(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(keywordDelims, r)
	})

	seen := make(map[string]struct{}, len(tokens))
	keywords := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

// entityPattern captures one variable group from a fixed surrounding form.
var (
	peoplePatterns = []*regexp.Regexp{
		regexp.MustCompile(`和(.+?)见面`),
		regexp.MustCompile(`找(.+?)讨论`),
		regexp.MustCompile(`(.+?)老师`),
		regexp.MustCompile(`(.+?)同学`),
	}
	placePatterns = []*regexp.Regexp{
		regexp.MustCompile(`在(.+?)会议`),
		regexp.MustCompile(`去(.+?)学习`),
		regexp.MustCompile(`(.+?)教室`),
		regexp.MustCompile(`(.+?)实验室`),
	}
)

// skillTriggers mark a text as containing a learnable skill; the skill
// itself is the larger token the trigger appears in.
var skillTriggers = []string{"学习", "掌握", "练习", "研究", "开发"}

// skillTokenDelims is the reduced delimiter set used when re-tokenizing for
// skill extraction.
const skillTokenDelims = " \t\r\n，,。."

// toolVocabulary is the closed set of recognized technologies, recorded in
// canonical form on a case-insensitive substring hit.
var toolVocabulary = []string{"Python", "React", "JavaScript", "AI", "Machine Learning", "Cyber Security"}

// Entities runs the four extraction passes (people, places, skills, tools)
// over the date-stripped text. Lists accumulate in match order; the same
// string may appear more than once when several patterns capture it.
// Concepts have no extraction rules and stay empty.
func Entities(text string) models.Entities {
	entities := models.NewEntities()

	for _, p := range peoplePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			entities[models.EntityPeople] = append(entities[models.EntityPeople], m[1])
		}
	}

	for _, p := range placePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			entities[models.EntityPlaces] = append(entities[models.EntityPlaces], m[1])
		}
	}

	for _, trigger := range skillTriggers {
		if !strings.Contains(text, trigger) {
			continue
		}
		tokens := strings.FieldsFunc(text, func(r rune) bool {
			return strings.ContainsRune(skillTokenDelims, r)
		})
		for _, tok := range tokens {
			if utf8.RuneCountInString(tok) > 2 && strings.Contains(tok, trigger) && tok != trigger {
				entities[models.EntitySkills] = append(entities[models.EntitySkills], tok)
			}
		}
	}

	lower := strings.ToLower(text)
	for _, tool := range toolVocabulary {
		if strings.Contains(lower, strings.ToLower(tool)) {
			entities[models.EntityTools] = append(entities[models.EntityTools], tool)
		}
	}

	return entities
}
