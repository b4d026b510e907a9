package command

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SynonymTable maps a normalized category name to the keywords that
// should resolve to it ("groceries" -> Food). Category names themselves
// always match and do not need to be listed.
type SynonymTable map[string][]string

// CategoryKeywords is one entry of the synonym configuration file.
type CategoryKeywords struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type keywordsFile struct {
	Categories []CategoryKeywords `yaml:"categories"`
}

// DefaultSynonyms returns the built-in synonym table covering the common
// budget buckets. Deployments can replace it with a YAML file via
// LoadSynonyms.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		"housing":        {"rent", "mortgage", "apartment", "lease"},
		"food":           {"groceries", "grocery", "restaurant", "dining"},
		"transportation": {"gas", "fuel", "uber", "lyft", "bus", "train", "parking", "taxi"},
		"utilities":      {"electric", "electricity", "water", "internet", "phone"},
		"entertainment":  {"movie", "movies", "netflix", "concert", "game"},
		"health":         {"doctor", "pharmacy", "gym", "medicine", "dentist"},
		"savings":        {"saving", "invest", "investment"},
	}
}

// LoadSynonyms reads a synonym table from a YAML file shaped as
//
//	categories:
//	  - name: Food
//	    keywords: [groceries, lunch, dinner]
//
// An empty path returns the built-in defaults. A file that exists but
// cannot be read or parsed is an error; the file fully replaces the
// defaults rather than merging with them.
func LoadSynonyms(path string) (SynonymTable, error) {
	if path == "" {
		return DefaultSynonyms(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonym file: %w", err)
	}
	var file keywordsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse synonym file: %w", err)
	}
	table := make(SynonymTable, len(file.Categories))
	for _, c := range file.Categories {
		name := normalizeText(c.Name)
		if name == "" {
			return nil, fmt.Errorf("synonym entry with empty category name")
		}
		table[name] = append(table[name], c.Keywords...)
	}
	return table, nil
}
