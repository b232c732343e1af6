package aiassist

import (
	"html"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultMarkupThreshold is the number of tag-like substrings above which
// output is treated as markup.
const DefaultMarkupThreshold = 3

var (
	tagLike = regexp.MustCompile(`<[^>]+>`)
	tagOpen = regexp.MustCompile(`<([A-Za-z/!?])`)
)

// Sanitizer filters model output before it reaches the editor widgets.
type Sanitizer struct {
	threshold int
	purifier  *bluemonday.Policy
	stripper  *bluemonday.Policy
}

func NewSanitizer(threshold int) *Sanitizer {
	if threshold < 0 {
		threshold = DefaultMarkupThreshold
	}
	return &Sanitizer{
		threshold: threshold,
		purifier:  bluemonday.UGCPolicy(),
		stripper:  bluemonday.StrictPolicy(),
	}
}

// Sanitize purifies markup and strips tags from everything else. A purified
// result that no longer counts as markup is stripped too, so the output of
// Sanitize is a fixed point.
func (s *Sanitizer) Sanitize(raw string) string {
	if s.isMarkup(raw) {
		purified := s.purifier.Sanitize(raw)
		if s.isMarkup(purified) {
			return purified
		}
		return s.strip(purified)
	}
	return s.strip(raw)
}

func (s *Sanitizer) isMarkup(text string) bool {
	return len(tagLike.FindAllStringIndex(text, s.threshold+1)) > s.threshold
}

// strip removes all tags and decodes entities. A '<' that would start a tag
// again is left escaped; any other '<' stays literal text.
func (s *Sanitizer) strip(text string) string {
	plain := s.stripper.Sanitize(text)
	for {
		next := html.UnescapeString(plain)
		if next == plain {
			break
		}
		plain = next
	}
	return tagOpen.ReplaceAllString(plain, "&lt;$1")
}
