package sms

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"paisa/internal/core"
)

//go:embed keywords.yaml
var keywordsYAML []byte

// KeywordTable maps each spending category to the lowercase substrings that
// imply it. Built once at startup and read-only afterwards; safe for
// unlimited concurrent readers.
type KeywordTable struct {
	keywords map[core.Category][]string
}

// LoadKeywordTable compiles the embedded keyword configuration. Every
// category of the closed set must be present and no unknown category may
// appear; keywords are normalized to lowercase.
func LoadKeywordTable() (*KeywordTable, error) {
	raw := map[string][]string{}
	if err := yaml.Unmarshal(keywordsYAML, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal keyword table: %w", err)
	}

	table := make(map[core.Category][]string, len(raw))
	for name, words := range raw {
		category, err := core.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("keyword table: unknown category %q", name)
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("keyword table: category %q has no keywords", name)
		}
		normalized := make([]string, len(words))
		for i, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				return nil, fmt.Errorf("keyword table: category %q has an empty keyword", name)
			}
			normalized[i] = w
		}
		table[category] = normalized
	}

	for _, category := range core.Categories() {
		if _, ok := table[category]; !ok {
			return nil, fmt.Errorf("keyword table: category %q missing", category)
		}
	}

	return &KeywordTable{keywords: table}, nil
}

// Keywords returns the keyword list for one category.
func (t *KeywordTable) Keywords(c core.Category) []string {
	return t.keywords[c]
}
