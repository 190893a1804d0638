package features

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
)

// normalizerOptions maps the text flags onto textnorm options.
func (tr *transformer) normalizerOptions(social bool) textnorm.Options {
	tp := tr.cfg.TextPreprocessing
	return textnorm.Options{
		Lowercase:          tp.Lowercase,
		RemoveWhitespace:   tp.RemoveWhitespace,
		RemoveSpecialChars: tp.RemoveSpecialChars,
		RemoveNumbers:      tp.RemoveNumbers,
		RemovePunctuation:  tp.RemovePunctuation,
		SocialMedia:        social,
		RemoveStopwords:    tp.RemoveStopwords,
		Stemming:           tp.Stemming,
		Lemmatization:      tp.Lemmatization,
		Language:           tr.cfg.Language,
		Logger:             &tr.log,
	}
}

// normalizeText cleans each text column in place. With extract_features the
// surface features of the raw text are inserted right after the column.
func (tr *transformer) normalizeText(t *table.Table, names []string) *table.Table {
	generic := textnorm.New(tr.normalizerOptions(false))
	var social *textnorm.Normalizer
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			continue
		}
		norm := generic
		if tr.cfg.TextPreprocessing.SocialMediaMode || strings.Contains(strings.ToLower(n), "tweet") {
			if social == nil {
				social = textnorm.New(tr.normalizerOptions(true))
			}
			norm = social
		}
		raw := make([]string, c.Len())
		for i := range raw {
			raw[i] = c.Value(i)
		}
		cols := []*table.Column{table.StringColumn(n, norm.NormalizeAll(raw), nil)}
		if tr.cfg.TextPreprocessing.ExtractFeatures {
			cols = append(cols, featureColumns(n, raw, namesOf(t))...)
		}
		t = t.Replace(n, cols...)
	}
	return t
}

func featureColumns(name string, raw []string, taken nameSet) []*table.Column {
	vals := make([][]float64, len(textnorm.FeatureNames))
	for k := range vals {
		vals[k] = make([]float64, len(raw))
	}
	for i, s := range raw {
		for k, v := range textnorm.Extract(s).Values() {
			vals[k][i] = v
		}
	}
	cols := make([]*table.Column, len(vals))
	for k, f := range textnorm.FeatureNames {
		cols[k] = table.NumericColumn(taken.claim(name+"_"+f), vals[k], nil)
	}
	return cols
}

// stopWords resolves text_vectorization.stop_words: unset or true means the
// pipeline language, false or "none" disables, a list is used as given.
func (tr *transformer) stopWords() map[string]struct{} {
	lang := tr.cfg.Language
	switch sw := tr.cfg.TextVectorization.StopWords.(type) {
	case bool:
		if !sw {
			return nil
		}
	case string:
		if strings.EqualFold(sw, "none") || strings.EqualFold(sw, "false") {
			return nil
		}
		if sw != "" {
			lang = sw
		}
	case []string:
		return wordList(sw)
	case []any:
		words := make([]string, 0, len(sw))
		for _, w := range sw {
			words = append(words, fmt.Sprint(w))
		}
		return wordList(words)
	}
	set, ok := textnorm.StopWords(lang)
	if !ok {
		tr.log.Warn().Str("language", lang).Msg("no stop-word list for vectorizer; using english")
	}
	return set
}

func wordList(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[strings.ToLower(w)] = struct{}{}
	}
	return out
}

// vectorize appends term features for each text column. Columns that fail
// are left untouched and reported as warnings.
func (tr *transformer) vectorize(t *table.Table, names []string) *table.Table {
	tv := tr.cfg.TextVectorization
	vec := NewVectorizer(VectorizerOptions{
		Method:      tv.Method,
		MaxFeatures: tv.MaxFeatures,
		NgramMin:    tv.NgramRange[0],
		NgramMax:    tv.NgramRange[1],
		MinDF:       tv.MinDF,
		MaxDF:       tv.MaxDF,
		StopWords:   tr.stopWords(),
	})
	var done []string
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok || tr.cfg.Skipped(n) {
			continue
		}
		docs := make([]string, c.Len())
		for i := range docs {
			docs[i] = c.Value(i)
		}
		terms, cols, err := vec.FitTransform(docs)
		if err != nil {
			tr.warn(n, "vectorize", err)
			continue
		}
		taken := namesOf(t)
		for j := range terms {
			t = t.WithColumn(table.NumericColumn(taken.claim(fmt.Sprintf("%s_vec_%d", n, j)), cols[j], nil))
		}
		done = append(done, n)
	}
	if tv.DropOriginal {
		t = t.Drop(done...)
	}
	return t
}

