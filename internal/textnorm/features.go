package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var reSentenceEnd = regexp.MustCompile(`[.!?]+`)

const featurePunctuation = ".,!?;:"

// Features are simple surface measurements of one text.
type Features struct {
	WordCount        int     `json:"word_count"`
	CharCount        int     `json:"char_count"`
	AvgWordLength    float64 `json:"avg_word_length"`
	SentenceCount    int     `json:"sentence_count"`
	UppercaseCount   int     `json:"uppercase_count"`
	PunctuationCount int     `json:"punctuation_count"`
}

// FeatureNames lists the feature suffixes in output order.
var FeatureNames = []string{
	"word_count", "char_count", "avg_word_length",
	"sentence_count", "uppercase_count", "punctuation_count",
}

// Values returns the features in FeatureNames order.
func (f Features) Values() []float64 {
	return []float64{
		float64(f.WordCount), float64(f.CharCount), f.AvgWordLength,
		float64(f.SentenceCount), float64(f.UppercaseCount), float64(f.PunctuationCount),
	}
}

// Extract measures text. The empty string yields all zeros.
func Extract(text string) Features {
	var f Features
	if text == "" {
		return f
	}
	words := strings.Fields(text)
	f.WordCount = len(words)
	f.CharCount = utf8.RuneCountInString(text)
	if len(words) > 0 {
		letters := 0
		for _, w := range words {
			letters += utf8.RuneCountInString(w)
		}
		avg, _ := decimal.NewFromFloat(float64(letters) / float64(len(words))).Round(2).Float64()
		f.AvgWordLength = avg
	}
	f.SentenceCount = len(reSentenceEnd.FindAllStringIndex(text, -1)) + 1
	for _, r := range text {
		if unicode.IsUpper(r) {
			f.UppercaseCount++
		}
		if strings.ContainsRune(featurePunctuation, r) {
			f.PunctuationCount++
		}
	}
	return f
}
