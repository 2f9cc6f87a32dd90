package genctx

import (
	"strings"

	"genforge/internal/plan"
)

// Keywords extracts the plan's relevance keyword set: purpose and filename
// words longer than three characters, alphabetic only, lowercased, plus
// every declared plan-level dependency tag.
func Keywords(p plan.GenerationPlan) map[string]struct{} {
	keywords := make(map[string]struct{})
	add := func(word string) {
		word = strings.ToLower(strings.TrimSpace(word))
		if len(word) <= 3 || !isAlpha(word) {
			return
		}
		keywords[word] = struct{}{}
	}
	for _, f := range p.Files {
		for _, w := range strings.Fields(f.Purpose) {
			add(w)
		}
		name := strings.TrimSuffix(f.Filename, pathExt(f.Filename))
		name = strings.NewReplacer("_", " ", "/", " ").Replace(name)
		for _, w := range strings.Fields(name) {
			add(w)
		}
	}
	for _, dep := range p.Dependencies {
		dep = strings.ToLower(strings.TrimSpace(dep))
		if dep != "" {
			keywords[dep] = struct{}{}
		}
	}
	return keywords
}

// TextRelevance scores a candidate text against the keyword set:
// (fraction of keywords found as substrings) × min(1, words/100).
// Empty text or an empty keyword set scores zero.
func TextRelevance(text string, keywords map[string]struct{}) float64 {
	if text == "" || len(keywords) == 0 {
		return 0
	}
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	matches := 0
	for kw := range keywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	base := float64(matches) / float64(len(keywords))
	weight := float64(words) / 100
	if weight > 1 {
		weight = 1
	}
	return base * weight
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return s != ""
}

func pathExt(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 && i > strings.LastIndexByte(filename, '/') {
		return filename[i:]
	}
	return ""
}
