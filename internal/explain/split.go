// Package explain renders question explanations and, when a question ships
// without one, asks an LLM tutor to write it.
package explain

import (
	"regexp"
	"strings"
)

var (
	headerRe    = regexp.MustCompile(`^(<b>正解：.*?</b>|【.*?】)`)
	vocabStart  = regexp.MustCompile(`(^|\n)・`)
	vocabBullet = regexp.MustCompile(`\n?・`)
	tagRe       = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
)

// Sections is an explanation split into its display parts.
type Sections struct {
	// Header is the leading answer line, e.g. "<b>正解：apple</b>" or "【解説】".
	Header string

	// Reason is the prose between the header and the first bullet.
	Reason string

	// Vocabulary holds the "・" bullets, trimmed, without the bullet mark.
	Vocabulary []string

	// Plain is set instead of the other fields when the text has no
	// recognizable structure.
	Plain string
}

// Split breaks an explanation into header, reason and vocabulary bullets.
// Empty input yields empty Sections.
func Split(text string) Sections {
	if text == "" {
		return Sections{}
	}

	var s Sections
	body := text
	if h := headerRe.FindString(text); h != "" {
		s.Header = h
		body = strings.TrimSpace(text[len(h):])
	}

	s.Reason = body
	if loc := vocabStart.FindStringIndex(body); loc != nil {
		s.Reason = strings.TrimSpace(body[:loc[0]])
		for _, item := range vocabBullet.Split(strings.TrimSpace(body[loc[0]:]), -1) {
			if item = strings.TrimSpace(item); item != "" {
				s.Vocabulary = append(s.Vocabulary, item)
			}
		}
	}
	s.Reason = strings.TrimSpace(s.Reason)

	if s.Header == "" && s.Reason == "" && len(s.Vocabulary) == 0 {
		return Sections{Plain: text}
	}
	return s
}

// Empty reports whether there is nothing to show.
func (s Sections) Empty() bool {
	return s.Header == "" && s.Reason == "" && len(s.Vocabulary) == 0 && s.Plain == ""
}

// HeaderText is Header with markup removed, for terminal output.
func (s Sections) HeaderText() string {
	return StripTags(s.Header)
}

// StripTags removes inline HTML tags such as <b> and <br>.
func StripTags(s string) string {
	return tagRe.ReplaceAllString(s, "")
}
