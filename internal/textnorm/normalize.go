package textnorm

import (
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/kljensen/snowball"
	"github.com/rs/zerolog"
)

// Options selects the normalisation steps. The zero value only collapses
// whitespace; use DefaultOptions for the usual preprocessing behaviour.
type Options struct {
	Lowercase          bool
	RemoveWhitespace   bool
	RemoveSpecialChars bool
	RemoveNumbers      bool
	RemovePunctuation  bool
	SocialMedia        bool
	RemoveStopwords    bool
	Stemming           bool
	Lemmatization      bool
	Language           string
	Logger             *zerolog.Logger
}

// DefaultOptions lowercases and collapses whitespace for English text.
func DefaultOptions() Options {
	return Options{Lowercase: true, RemoveWhitespace: true, Language: "english"}
}

// stemLanguages are the languages the snowball stemmer implements.
var stemLanguages = map[string]bool{
	"english": true, "spanish": true, "french": true, "russian": true,
	"swedish": true, "norwegian": true, "hungarian": true,
}

var (
	lemmaOnce  sync.Once
	lemmatizer *golem.Lemmatizer
	lemmaErr   error
)

func englishLemmatizer() (*golem.Lemmatizer, error) {
	lemmaOnce.Do(func() {
		lemmatizer, lemmaErr = golem.New(en.New())
	})
	return lemmatizer, lemmaErr
}

// Normalizer applies a fixed Options set to many texts.
type Normalizer struct {
	opt   Options
	lang  string
	stops map[string]struct{}
	stem  bool
	lemma *golem.Lemmatizer
	log   zerolog.Logger
}

// New prepares a Normalizer. Unsupported languages degrade to a warning and
// the nearest usable behaviour; New never fails.
func New(opt Options) *Normalizer {
	n := &Normalizer{opt: opt, lang: CanonicalLanguage(opt.Language), log: zerolog.Nop()}
	if opt.Logger != nil {
		n.log = *opt.Logger
	}
	if opt.RemoveStopwords {
		stops, ok := StopWords(n.lang)
		if !ok {
			n.log.Warn().Str("language", n.lang).Msg("no stop-word list; using english")
		}
		n.stops = stops
	}
	if opt.Stemming {
		if stemLanguages[n.lang] {
			n.stem = true
		} else {
			n.log.Warn().Str("language", n.lang).Msg("stemming unsupported; skipped")
		}
	}
	if opt.Lemmatization {
		switch {
		case n.lang != "english":
			n.log.Warn().Str("language", n.lang).Msg("lemmatization supports english only; skipped")
		default:
			lm, err := englishLemmatizer()
			if err != nil {
				n.log.Warn().Err(err).Msg("lemmatizer unavailable; skipped")
			} else {
				n.lemma = lm
			}
		}
	}
	return n
}

// Normalize runs the configured steps over s. The generic variant always
// drops URLs, e-mail addresses and decorative punctuation first.
func (n *Normalizer) Normalize(s string) string {
	o := n.opt
	if o.SocialMedia {
		s = CleanSocial(s)
	} else {
		if o.Lowercase {
			s = strings.ToLower(s)
		}
		s = stripNoise(s)
		if o.RemoveSpecialChars {
			s = reSpecial.ReplaceAllString(s, " ")
		}
		if o.RemoveNumbers {
			s = reDigits.ReplaceAllString(s, " ")
		}
	}
	if n.stops != nil || n.stem || n.lemma != nil {
		words := strings.Fields(s)
		kept := words[:0]
		for _, w := range words {
			if n.stops != nil {
				if _, stop := n.stops[strings.ToLower(w)]; stop {
					continue
				}
			}
			if n.stem {
				if st, err := snowball.Stem(w, n.lang, true); err == nil && st != "" {
					w = st
				}
			}
			if n.lemma != nil {
				w = n.lemma.Lemma(w)
			}
			kept = append(kept, w)
		}
		s = strings.Join(kept, " ")
	}
	if o.RemoveNumbers && o.SocialMedia {
		s = reDigits.ReplaceAllString(s, " ")
	}
	if o.RemovePunctuation {
		s = rePunctuation.ReplaceAllString(s, " ")
	}
	if o.RemoveWhitespace || o.SocialMedia {
		return CollapseSpace(s)
	}
	return s
}

// NormalizeAll maps Normalize over texts.
func (n *Normalizer) NormalizeAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = n.Normalize(t)
	}
	return out
}
