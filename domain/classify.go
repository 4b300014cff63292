package domain

import (
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
)

const systemMarker = "_SYSTEM_"

// Database workloads are recognized by naming convention.
var databaseMarkers = []string{"POSTGRES", "MYSQL", "MONGODB", "REDIS"}

// Classification is computed once at creation from the process name and
// command, then stored on the record. Policy code reads these flags instead
// of re-matching substrings on every evaluation.
type Classification struct {
	System   bool `json:"system"`
	Database bool `json:"database"`
}

// Classifier recognizes the reserved naming conventions.
// The database markers go through an Aho-Corasick automaton so the set can
// grow without turning classification into a chain of strings.Contains calls.
type Classifier struct {
	matcher *goahocorasick.Machine
}

func NewClassifier() (*Classifier, error) {
	patterns := make([][]rune, len(databaseMarkers))
	for i, marker := range databaseMarkers {
		patterns[i] = []rune(marker)
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Classifier{matcher: m}, nil
}

// Classify inspects name and command. Matching is case-insensitive.
func (c *Classifier) Classify(name, command string) Classification {
	haystack := []rune(strings.ToUpper(name + " " + command))
	return Classification{
		System:   strings.Contains(strings.ToUpper(name), systemMarker),
		Database: len(c.matcher.MultiPatternSearch(haystack, true)) > 0,
	}
}
