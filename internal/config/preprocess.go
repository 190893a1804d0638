package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Recognised method names.
const (
	FillMean   = "mean"
	FillMedian = "median"
	FillMode   = "mode"
	FillDrop   = "drop"
	FillZero   = "zero"

	VectorTFIDF = "tfidf"
	VectorCount = "count"

	EncodeLabel  = "label"
	EncodeOneHot = "onehot"

	ScaleStandard = "standard"
	ScaleMinMax   = "minmax"
)

// ConfigError reports an invalid preprocessing configuration.
type ConfigError struct {
	Key    string
	Value  any
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid preprocessing config: %s", e.Reason)
	}
	return fmt.Sprintf("invalid preprocessing config: %s=%v: %s", e.Key, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

type Fillna struct {
	Method string `mapstructure:"method" json:"method"`
}

// TextPreprocessing holds the text-cleaning flags.
type TextPreprocessing struct {
	Lowercase          bool `mapstructure:"lowercase" json:"lowercase"`
	RemoveWhitespace   bool `mapstructure:"remove_whitespace" json:"remove_whitespace"`
	RemoveSpecialChars bool `mapstructure:"remove_special_chars" json:"remove_special_chars"`
	RemoveNumbers      bool `mapstructure:"remove_numbers" json:"remove_numbers"`
	RemovePunctuation  bool `mapstructure:"remove_punctuation" json:"remove_punctuation"`
	SocialMediaMode    bool `mapstructure:"social_media_mode" json:"social_media_mode"`
	RemoveStopwords    bool `mapstructure:"remove_stopwords_nltk" json:"remove_stopwords_nltk"`
	Stemming           bool `mapstructure:"stemming" json:"stemming"`
	Lemmatization      bool `mapstructure:"lemmatization" json:"lemmatization"`
	ExtractFeatures    bool `mapstructure:"extract_features" json:"extract_features"`
}

// TextVectorization configures the TF-IDF / count vectorizer.
type TextVectorization struct {
	Enabled     bool    `mapstructure:"enabled" json:"enabled"`
	Method      string  `mapstructure:"method" json:"method"`
	MaxFeatures int     `mapstructure:"max_features" json:"max_features"`
	NgramRange  []int   `mapstructure:"ngram_range" json:"ngram_range"`
	MinDF       float64 `mapstructure:"min_df" json:"min_df"`
	MaxDF       float64 `mapstructure:"max_df" json:"max_df"`
	// StopWords is a language name, a list of words, or false / "none".
	// Unset means the pipeline language.
	StopWords         any      `mapstructure:"stop_words" json:"stop_words"`
	DropOriginal      bool     `mapstructure:"drop_original" json:"drop_original"`
	SkipVectorization []string `mapstructure:"skip_vectorization" json:"skip_vectorization"`
}

type CategoricalEncoding struct {
	Method string `mapstructure:"method" json:"method"`
}

type Scaling struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Method  string `mapstructure:"method" json:"method"`
}

// Preprocessing is the feature-transformation configuration. Every key has
// a default, so an empty document is valid.
type Preprocessing struct {
	DropColumns         []string            `mapstructure:"drop_columns" json:"drop_columns"`
	Fillna              Fillna              `mapstructure:"fillna" json:"fillna"`
	TextPreprocessing   TextPreprocessing   `mapstructure:"text_preprocessing" json:"text_preprocessing"`
	Language            string              `mapstructure:"language" json:"language"`
	TextVectorization   TextVectorization   `mapstructure:"text_vectorization" json:"text_vectorization"`
	CategoricalEncoding CategoricalEncoding `mapstructure:"categorical_encoding" json:"categorical_encoding"`
	Scaling             Scaling             `mapstructure:"scaling" json:"scaling"`
	// SkipVectorization is accepted at the top level too; both lists apply.
	SkipVectorization []string `mapstructure:"skip_vectorization" json:"skip_vectorization"`
}

func setPreprocessingDefaults(v *viper.Viper, language string) {
	v.SetDefault("drop_columns", []string{})
	v.SetDefault("fillna.method", FillMean)
	v.SetDefault("text_preprocessing.lowercase", true)
	v.SetDefault("text_preprocessing.remove_whitespace", true)
	v.SetDefault("text_preprocessing.remove_special_chars", false)
	v.SetDefault("text_preprocessing.remove_numbers", false)
	v.SetDefault("text_preprocessing.remove_punctuation", false)
	v.SetDefault("text_preprocessing.social_media_mode", false)
	v.SetDefault("text_preprocessing.remove_stopwords_nltk", false)
	v.SetDefault("text_preprocessing.stemming", false)
	v.SetDefault("text_preprocessing.lemmatization", false)
	v.SetDefault("text_preprocessing.extract_features", false)
	v.SetDefault("language", language)
	v.SetDefault("text_vectorization.enabled", false)
	v.SetDefault("text_vectorization.method", VectorTFIDF)
	v.SetDefault("text_vectorization.max_features", 100)
	v.SetDefault("text_vectorization.ngram_range", []int{1, 1})
	v.SetDefault("text_vectorization.min_df", 1)
	v.SetDefault("text_vectorization.max_df", 1.0)
	v.SetDefault("text_vectorization.drop_original", true)
	v.SetDefault("text_vectorization.skip_vectorization", []string{})
	v.SetDefault("categorical_encoding.method", EncodeLabel)
	v.SetDefault("scaling.enabled", false)
	v.SetDefault("scaling.method", ScaleStandard)
	v.SetDefault("skip_vectorization", []string{})
}

// DefaultPreprocessing returns the configuration an empty document yields.
func DefaultPreprocessing() Preprocessing {
	v := viper.New()
	setPreprocessingDefaults(v, "english")
	var p Preprocessing
	_ = v.Unmarshal(&p)
	return p
}

// LoadPreprocessing reads a preprocessing configuration. arg is either the
// path of a JSON or YAML file or an inline JSON document; "" yields the
// defaults. The result is validated.
func LoadPreprocessing(arg string) (Preprocessing, error) {
	return LoadPreprocessingFor(arg, "english")
}

// LoadPreprocessingFor is LoadPreprocessing with a different default language.
func LoadPreprocessingFor(arg, language string) (Preprocessing, error) {
	if language == "" {
		language = "english"
	}
	v := viper.New()
	setPreprocessingDefaults(v, language)

	arg = strings.TrimSpace(arg)
	switch {
	case arg == "":
	case isFile(arg):
		v.SetConfigFile(arg)
		if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(arg)), "."); ext == "" || ext == "txt" {
			v.SetConfigType("json")
		}
		if err := v.ReadInConfig(); err != nil {
			return Preprocessing{}, &ConfigError{Reason: "read " + arg, Err: err}
		}
	default:
		v.SetConfigType("json")
		if err := v.ReadConfig(strings.NewReader(arg)); err != nil {
			return Preprocessing{}, &ConfigError{Reason: "parse inline JSON", Err: err}
		}
	}

	var p Preprocessing
	if err := v.Unmarshal(&p); err != nil {
		return Preprocessing{}, &ConfigError{Reason: "decode", Err: err}
	}
	if err := p.Validate(); err != nil {
		return Preprocessing{}, err
	}
	return p, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Validate rejects unknown methods and out-of-range vectorizer parameters.
func (p Preprocessing) Validate() error {
	oneOf := func(key, val string, allowed ...string) error {
		for _, a := range allowed {
			if val == a {
				return nil
			}
		}
		return &ConfigError{Key: key, Value: val, Reason: "expected one of " + strings.Join(allowed, ", ")}
	}
	if err := oneOf("fillna.method", p.Fillna.Method, FillMean, FillMedian, FillMode, FillDrop, FillZero); err != nil {
		return err
	}
	if err := oneOf("text_vectorization.method", p.TextVectorization.Method, VectorTFIDF, VectorCount); err != nil {
		return err
	}
	if err := oneOf("categorical_encoding.method", p.CategoricalEncoding.Method, EncodeLabel, EncodeOneHot); err != nil {
		return err
	}
	if err := oneOf("scaling.method", p.Scaling.Method, ScaleStandard, ScaleMinMax); err != nil {
		return err
	}

	tv := p.TextVectorization
	if tv.MaxFeatures < 0 {
		return &ConfigError{Key: "text_vectorization.max_features", Value: tv.MaxFeatures, Reason: "must not be negative"}
	}
	if len(tv.NgramRange) != 2 || tv.NgramRange[0] < 1 || tv.NgramRange[1] < tv.NgramRange[0] {
		return &ConfigError{Key: "text_vectorization.ngram_range", Value: tv.NgramRange, Reason: "expected [min, max] with 1 <= min <= max"}
	}
	if tv.MinDF < 0 || tv.MaxDF <= 0 {
		return &ConfigError{Key: "text_vectorization.min_df/max_df", Value: []float64{tv.MinDF, tv.MaxDF}, Reason: "must be positive"}
	}
	switch sw := tv.StopWords.(type) {
	case nil, string, bool, []any, []string:
	default:
		return &ConfigError{Key: "text_vectorization.stop_words", Value: sw, Reason: "expected a language, a word list or false"}
	}
	return nil
}

// Skipped reports whether a column is excluded from vectorization.
func (p Preprocessing) Skipped(column string) bool {
	for _, list := range [][]string{p.SkipVectorization, p.TextVectorization.SkipVectorization} {
		for _, c := range list {
			if c == column {
				return true
			}
		}
	}
	return false
}
