// Package prompt expands @title mentions in AI prompts into inlined document content.
package prompt

import (
	"fmt"
	"regexp"

	"docsai/internal/model"
)

// mentionPattern matches "@" followed by a greedy run of characters that are
// neither "@" nor whitespace. Whitespace is unicode.IsSpace: ASCII space
// classes, NEL and every Unicode separator (NBSP included).
var mentionPattern = regexp.MustCompile(`@[^[:space:]\x{85}\p{Z}@]+`)

// Resolver looks up document content by exact title.
type Resolver interface {
	Resolve(title string) (content string, ok bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(title string) (string, bool)

func (f ResolverFunc) Resolve(title string) (string, bool) { return f(title) }

// FromDocuments resolves titles against docs. When titles repeat, the first document wins.
func FromDocuments(docs []model.Document) Resolver {
	byTitle := make(map[string]string, len(docs))
	for _, d := range docs {
		if _, dup := byTitle[d.Title]; !dup {
			byTitle[d.Title] = d.Content
		}
	}
	return ResolverFunc(func(title string) (string, bool) {
		content, ok := byTitle[title]
		return content, ok
	})
}

// Block renders the inlined form of a resolved mention.
func Block(title, content string) string {
	return fmt.Sprintf("Content of \"%s\":\n%s\n", title, content)
}

// Mentions returns the distinct mention tokens in prompt, in order of first appearance.
func Mentions(prompt string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range mentionPattern.FindAllString(prompt, -1) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// Expand replaces every mention whose title resolves with Block(title, content).
// Unresolved mentions are left as written. Tokens are matched whole, so "@Spec"
// is never substituted inside "@Spec2", and inlined content is not re-scanned.
func Expand(prompt string, r Resolver) string {
	cache := make(map[string]string)
	return mentionPattern.ReplaceAllStringFunc(prompt, func(tok string) string {
		if out, ok := cache[tok]; ok {
			return out
		}
		title := tok[1:]
		out := tok
		if content, ok := r.Resolve(title); ok {
			out = Block(title, content)
		}
		cache[tok] = out
		return out
	})
}
