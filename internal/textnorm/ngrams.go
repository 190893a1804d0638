package textnorm

import (
	"regexp"
	"sort"
	"strings"
)

var reToken = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases s and returns its word tokens of two or more characters.
func Tokenize(s string) []string {
	return reToken.FindAllString(strings.ToLower(s), -1)
}

// Ngrams joins consecutive tokens into space-separated n-grams for every n
// in [lo, hi].
func Ngrams(tokens []string, lo, hi int) []string {
	if lo < 1 {
		lo = 1
	}
	var out []string
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// Term is an n-gram with its frequency.
type Term struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// TopNgrams counts n-grams over texts, ignoring English stop words, and
// returns the k most frequent. Ties break alphabetically.
func TopNgrams(texts []string, k, n int) []Term {
	if k <= 0 || n <= 0 {
		return nil
	}
	counts := map[string]int{}
	for _, t := range texts {
		var toks []string
		for _, tok := range Tokenize(t) {
			if _, stop := englishStops[tok]; !stop {
				toks = append(toks, tok)
			}
		}
		for _, g := range Ngrams(toks, n, n) {
			counts[g]++
		}
	}
	terms := make([]Term, 0, len(counts))
	for t, c := range counts {
		terms = append(terms, Term{Term: t, Count: c})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > k {
		terms = terms[:k]
	}
	return terms
}
