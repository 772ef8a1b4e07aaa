package utils

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is stored when a submission names no usable language.
const DefaultLanguage = "en"

var (
	supportedLanguages = []language.Tag{language.English, language.Amharic}
	languageMatcher    = language.NewMatcher(supportedLanguages)
)

// NormalizeLanguage maps a client language tag ("am-ET", "EN", ...) onto one
// of the languages the site is published in.
func NormalizeLanguage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, confidence := languageMatcher.Match(tag)
	if confidence == language.No {
		return DefaultLanguage
	}
	base, _ := supportedLanguages[idx].Base()
	return base.String()
}
