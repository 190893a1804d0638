package features

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
)

var (
	// ErrEmptyVocabulary means no document produced a single token.
	ErrEmptyVocabulary = errors.New("empty vocabulary; documents contain only stop words or no words")
	// ErrPrunedVocabulary means every term fell outside the document-frequency bounds.
	ErrPrunedVocabulary = errors.New("no terms remain after min_df/max_df pruning")
	errDFBounds         = errors.New("max_df corresponds to fewer documents than min_df")
)

// VectorizerOptions configures a Vectorizer.
type VectorizerOptions struct {
	// Method is config.VectorTFIDF or config.VectorCount.
	Method      string
	MaxFeatures int
	NgramMin    int
	NgramMax    int
	// MinDF >= 1 is a document count, below 1 a share of documents.
	MinDF float64
	// MaxDF <= 1 is a share of documents, above 1 a document count.
	MaxDF     float64
	StopWords map[string]struct{}
}

// Vectorizer turns documents into term-frequency features. TF-IDF uses a
// smoothed idf, ln((1+n)/(1+df))+1, and L2-normalised rows.
type Vectorizer struct {
	opt VectorizerOptions
}

// NewVectorizer fills unset options with the defaults (tfidf, unigrams,
// min_df 1, max_df 1.0, no feature cap).
func NewVectorizer(opt VectorizerOptions) *Vectorizer {
	if opt.Method == "" {
		opt.Method = config.VectorTFIDF
	}
	if opt.NgramMin < 1 {
		opt.NgramMin = 1
	}
	if opt.NgramMax < opt.NgramMin {
		opt.NgramMax = opt.NgramMin
	}
	if opt.MinDF <= 0 {
		opt.MinDF = 1
	}
	if opt.MaxDF <= 0 {
		opt.MaxDF = 1
	}
	return &Vectorizer{opt: opt}
}

// FitTransform learns the vocabulary of docs and returns the alphabetically
// ordered terms with one feature column per term (cols[term][doc]).
func (v *Vectorizer) FitTransform(docs []string) ([]string, [][]float64, error) {
	n := len(docs)
	counts := make([]map[string]int, n)
	df := map[string]int{}
	total := map[string]int{}
	for i, d := range docs {
		var toks []string
		for _, tok := range textnorm.Tokenize(d) {
			if _, stop := v.opt.StopWords[tok]; !stop {
				toks = append(toks, tok)
			}
		}
		counts[i] = map[string]int{}
		for _, g := range textnorm.Ngrams(toks, v.opt.NgramMin, v.opt.NgramMax) {
			counts[i][g]++
			total[g]++
		}
		for g := range counts[i] {
			df[g]++
		}
	}
	if len(df) == 0 {
		return nil, nil, ErrEmptyVocabulary
	}

	minDocs, maxDocs := v.docBounds(n)
	if maxDocs < minDocs {
		return nil, nil, errDFBounds
	}
	var vocab []string
	for term, c := range df {
		if float64(c) >= minDocs && float64(c) <= maxDocs {
			vocab = append(vocab, term)
		}
	}
	if len(vocab) == 0 {
		return nil, nil, ErrPrunedVocabulary
	}
	if v.opt.MaxFeatures > 0 && len(vocab) > v.opt.MaxFeatures {
		sort.Slice(vocab, func(i, j int) bool {
			if total[vocab[i]] != total[vocab[j]] {
				return total[vocab[i]] > total[vocab[j]]
			}
			return vocab[i] < vocab[j]
		})
		vocab = vocab[:v.opt.MaxFeatures]
	}
	sort.Strings(vocab)

	cols := make([][]float64, len(vocab))
	for j, term := range vocab {
		col := make([]float64, n)
		for i := range docs {
			col[i] = float64(counts[i][term])
		}
		cols[j] = col
	}
	if v.opt.Method == config.VectorTFIDF {
		for j, term := range vocab {
			idf := math.Log(float64(1+n)/float64(1+df[term])) + 1
			floats.Scale(idf, cols[j])
		}
		row := make([]float64, len(vocab))
		for i := 0; i < n; i++ {
			for j := range vocab {
				row[j] = cols[j][i]
			}
			norm := floats.Norm(row, 2)
			if norm == 0 {
				continue
			}
			for j := range vocab {
				cols[j][i] /= norm
			}
		}
	}
	return vocab, cols, nil
}

func (v *Vectorizer) docBounds(n int) (lo, hi float64) {
	lo = v.opt.MinDF
	if lo < 1 {
		lo = lo * float64(n)
	}
	hi = v.opt.MaxDF
	if hi <= 1 {
		hi = hi * float64(n)
	}
	return lo, hi
}
