// Package detector checks that specialist text is written in the language of
// the reference corpus it is scored against.
package detector

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"

	"github.com/dtnitsch/weirdness/pkg/internalerr"
)

// corpusLanguages maps Google Books corpus codes to lingua languages.
var corpusLanguages = map[string]lingua.Language{
	"eng":         lingua.English,
	"eng-us":      lingua.English,
	"eng-gb":      lingua.English,
	"eng-fiction": lingua.English,
	"fre":         lingua.French,
	"ger":         lingua.German,
	"heb":         lingua.Hebrew,
	"ita":         lingua.Italian,
	"rus":         lingua.Russian,
	"spa":         lingua.Spanish,
	"chi-sim":     lingua.Chinese,
}

// CorpusLanguage returns the language of a corpus code.
func CorpusLanguage(code string) (lingua.Language, error) {
	lang, ok := corpusLanguages[strings.ToLower(code)]
	if !ok {
		return lingua.Unknown, fmt.Errorf("unknown corpus language %q: %w", code, internalerr.ErrInvalidInput)
	}
	return lang, nil
}

var (
	once     sync.Once
	detector lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	once.Do(func() {
		seen := map[lingua.Language]bool{}
		var langs []lingua.Language
		for _, l := range corpusLanguages {
			if !seen[l] {
				seen[l] = true
				langs = append(langs, l)
			}
		}
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(langs...).
			Build()
	})
	return detector
}

// Detect returns the most likely corpus language of text, or false when the
// text is too short or ambiguous to tell.
func Detect(text string) (lingua.Language, bool) {
	return languageDetector().DetectLanguageOf(text)
}

// Mismatch reports the detected language when it differs from the corpus
// language. Undetectable text never counts as a mismatch.
func Mismatch(text, corpusCode string) (detected string, mismatch bool, err error) {
	want, err := CorpusLanguage(corpusCode)
	if err != nil {
		return "", false, err
	}
	got, ok := Detect(text)
	if !ok {
		return "", false, nil
	}
	return strings.ToLower(got.String()), got != want, nil
}
