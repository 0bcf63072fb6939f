package service

import (
	"strings"

	"github.com/mbeaver502/CyberLawBot/internal/model"
)

// KeywordFilter decides whether a bill candidate is worth recording by
// substring-matching a keyword list against its text. Matching is case
// insensitive; an empty list matches nothing.
type KeywordFilter struct {
	keywords []string
}

// NewKeywordFilter creates a new KeywordFilter
func NewKeywordFilter(keywords []string) *KeywordFilter {
	f := &KeywordFilter{}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			f.keywords = append(f.keywords, kw)
		}
	}
	return f
}

// Match reports whether the candidate's title, summary, or any subject term
// contains one of the keywords.
func (f *KeywordFilter) Match(c *model.BillCandidate) bool {
	if f.matchText(c.Title) || f.matchText(c.Summary) {
		return true
	}
	for _, subject := range c.Subjects {
		if f.matchText(subject) {
			return true
		}
	}
	return false
}

func (f *KeywordFilter) matchText(text string) bool {
	if text == "" {
		return false
	}
	text = strings.ToLower(text)
	for _, kw := range f.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
