package simplify

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Message is a raw diagnostic prepared for matching.
type Message struct {
	Raw string
	// Area is the text the source-level strategies inspect.
	Area string
	// Source is false for token-level parser messages; Area is empty then.
	Source bool
}

var (
	sourceForms = []*regexp.Regexp{
		regexp.MustCompile(`(?s)^no viable alternative at input '(.*)'$`),
		regexp.MustCompile(`(?s)^token recognition error at: '(.*)'$`),
	}
	tokenForm = regexp.MustCompile(`(?s)^(?:missing .+ at|extraneous input|mismatched input) '`)
)

// Parse normalizes raw and extracts its offending area.
func Parse(raw string) Message {
	text := strings.TrimSpace(norm.NFC.String(raw))
	for _, re := range sourceForms {
		if m := re.FindStringSubmatch(text); m != nil {
			return Message{Raw: text, Area: m[1], Source: true}
		}
	}
	if tokenForm.MatchString(text) {
		return Message{Raw: text}
	}
	return Message{Raw: text, Area: text, Source: true}
}
