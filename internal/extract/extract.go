// Package extract recovers structured objects from free-form oracle responses.
//
// Oracle text may contain prose, markdown fences, drafts and several JSON-like fragments.
// Extraction never fails loudly: a response with nothing usable yields an invalid Result.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
	"sync"
)

// Shape is a named predicate that both recognises and decodes one kind of object.
type Shape[T any] struct {
	Name   string
	Decode func(raw json.RawMessage) (T, bool)
}

// Result is either a Valid value or an invalid outcome carrying nothing.
type Result[T any] struct {
	Value T
	Valid bool
}

// Options tune how candidates are gathered.
type Options struct {
	// Tag, when set, names the delimiter pair <Tag>...</Tag> wrapping the authoritative answer.
	Tag string
}

// Extract selects an object of the given shape from text.
//
// When Tag is set and at least one delimited span exists, only the last span is considered:
// the oracle may draft before answering. Otherwise every candidate in the text is considered
// and the first one that fits the shape wins.
func Extract[T any](text string, shape Shape[T], opts Options) Result[T] {
	if opts.Tag != "" {
		if spans := Delimited(text, opts.Tag); len(spans) > 0 {
			return first(Candidates(spans[len(spans)-1]), shape)
		}
	}
	return first(Candidates(text), shape)
}

func first[T any](candidates []json.RawMessage, shape Shape[T]) Result[T] {
	for _, c := range candidates {
		if v, ok := shape.Decode(c); ok {
			return Result[T]{Value: v, Valid: true}
		}
	}
	return Result[T]{}
}

var tagPatterns sync.Map // tag -> *regexp.Regexp

func tagPattern(tag string) *regexp.Regexp {
	if re, ok := tagPatterns.Load(tag); ok {
		return re.(*regexp.Regexp)
	}
	q := regexp.QuoteMeta(tag)
	re, _ := tagPatterns.LoadOrStore(tag, regexp.MustCompile(`(?s)<`+q+`>(.*?)</`+q+`>`))
	return re.(*regexp.Regexp)
}

// Delimited returns the inner text of every <tag>...</tag> span, in order of appearance.
func Delimited(text, tag string) []string {
	matches := tagPattern(tag).FindAllStringSubmatch(text, -1)
	spans := make([]string, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, strings.TrimSpace(m[1]))
	}
	return spans
}

// Candidates returns every balanced {...} substring of text that parses as JSON, left to right.
// After a successful parse scanning resumes past the object; after a failure it resumes at the
// next opening brace, so a valid object nested in broken text is still found.
func Candidates(text string) []json.RawMessage {
	var out []json.RawMessage
	for i := 0; i < len(text); {
		start := strings.IndexByte(text[i:], '{')
		if start < 0 {
			break
		}
		start += i

		end := matchBrace(text, start)
		if end < 0 {
			i = start + 1
			continue
		}

		fragment := text[start : end+1]
		if json.Valid([]byte(fragment)) {
			out = append(out, json.RawMessage(fragment))
			i = end + 1
			continue
		}
		i = start + 1
	}
	return out
}

// matchBrace returns the index of the brace closing the one at start, or -1. Braces inside
// double-quoted strings are ignored.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
