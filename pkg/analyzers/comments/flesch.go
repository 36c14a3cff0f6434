package comments

import (
	"math"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"
)

// Flesch reading ease coefficients.
const (
	fleschBase            = 206.835
	fleschSentenceWeight  = 1.015
	fleschSyllableWeight  = 84.6
	shortSentenceMaxWords = 2
)

// FleschReadingEase scores text as
// 206.835 − 1.015·(words/sentences) − 84.6·(syllables/words), rounded to two
// decimals. Sentences of two words or fewer are not counted, but at least one
// sentence always is. Text without words scores the base constant.
func FleschReadingEase(text string) float64 {
	lexicon := lexiconWords(text)
	wordCount := len(lexicon)

	var perSentence, perWord float64

	if wordCount > 0 {
		syllables := 0

		for _, w := range lexicon {
			syllables += countSyllables(w)
		}

		perSentence = float64(wordCount) / float64(sentenceCount(text))
		perWord = float64(syllables) / float64(wordCount)
	}

	score := fleschBase - fleschSentenceWeight*perSentence - fleschSyllableWeight*perWord

	return legacyRound(score, 2)
}

// lexiconWords returns the word segments of text that contain a letter or digit.
func lexiconWords(text string) []string {
	var out []string

	seg := words.FromString(text)
	for seg.Next() {
		w := seg.Value()
		if strings.IndexFunc(w, isWordRune) >= 0 {
			out = append(out, w)
		}
	}

	return out
}

func sentenceCount(text string) int {
	count := 0

	seg := sentences.FromString(text)
	for seg.Next() {
		if len(lexiconWords(seg.Value())) > shortSentenceMaxWords {
			count++
		}
	}

	return max(count, 1)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// countSyllables approximates syllables as vowel groups, dropping a silent
// trailing "e". Every word has at least one syllable.
func countSyllables(word string) int {
	w := strings.ToLower(word)
	count := 0
	prevVowel := false

	for _, r := range w {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}

		prevVowel = vowel
	}

	if count > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		count--
	}

	return max(count, 1)
}

// legacyRound mirrors textstat's rounding, floor(v*p + copysign(0.5, v)) / p.
// Negative values move one step down, so -1.234 becomes -1.24.
func legacyRound(v float64, places int) float64 {
	p := math.Pow(10, float64(places))

	return math.Floor(v*p+math.Copysign(0.5, v)) / p
}
