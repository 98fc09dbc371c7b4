package analytics

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dtnitsch/weirdness/models"
)

// wordPattern matches maximal runs of word characters: letters, digits and underscore.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Options tunes WordFrequency. The zero value keeps every token.
type Options struct {
	DropStopwords bool
}

// Lower lowercases s with Unicode-aware case mapping.
// A Caser is stateful, so one is created per call.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Tokenize lowercases text and returns its word tokens in order.
func Tokenize(text string) []string {
	return wordPattern.FindAllString(Lower(text), -1)
}

// WordFrequency counts word occurrences in text. Punctuation and whitespace
// separate tokens; the returned table keeps first-seen word order.
func WordFrequency(text string, opts Options) *models.SpecialistTable {
	table := models.NewSpecialistTable()
	for _, word := range Tokenize(text) {
		if opts.DropStopwords && IsStopword(word) {
			continue
		}
		table.Add(word, 1)
	}
	return table
}

// IsStopword checks if a word is a common stopword that should be filtered out.
func IsStopword(word string) bool {
	_, exists := commonWords[strings.ToLower(word)]
	return exists
}
