package features

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// mixedTable has 30 rows: a numeric score with one gap, a three-city
// categorical with one gap and a date column.
func mixedTable() *table.Table {
	header := []string{"score", "city", "joined"}
	cities := []string{"paris", "lyon", "nice"}
	var rows [][]string
	for i := 0; i < 30; i++ {
		score := fmt.Sprintf("%g", float64(i)*1.5)
		if i == 3 {
			score = ""
		}
		city := cities[i%3]
		if i == 5 {
			city = ""
		}
		rows = append(rows, []string{score, city, fmt.Sprintf("2021-03-%02d", i%28+1)})
	}
	return table.FromRecords(header, rows)
}

func reviewTable(n int) *table.Table {
	adjectives := []string{"excellent", "terrible", "average", "surprising", "wonderful", "disappointing"}
	var rows [][]string
	for i := 0; i < n; i++ {
		rows = append(rows, []string{fmt.Sprintf(
			"Order %d arrived and the %s packaging made the whole experience feel %s to me",
			i, adjectives[i%len(adjectives)], adjectives[(i+1)%len(adjectives)])})
	}
	return table.FromRecords([]string{"review"}, rows)
}

func assertInvariants(t *testing.T, res *Result) {
	t.Helper()
	assert.Zero(t, res.Table.Missing(), "no missing cells")
	seen := map[string]bool{}
	for _, n := range res.Table.Names() {
		assert.False(t, seen[n], "duplicate column %q", n)
		assert.NotContains(t, n, "[")
		assert.NotContains(t, n, "<")
		seen[n] = true
	}
}

func TestTransformDefaults(t *testing.T) {
	in := mixedTable()
	res, err := Transform(in, config.DefaultPreprocessing(), Options{})
	require.NoError(t, err)
	assertInvariants(t, res)

	assert.Equal(t, [2]int{30, 3}, res.OriginalShape)
	assert.Equal(t, []string{"score", "city", "joined_year", "joined_month", "joined_day", "joined_dayofweek"}, res.Table.Names())

	score, _ := res.Table.Column("score")
	want := stat.Mean(in.Col(0).Floats(), nil)
	assert.InDelta(t, want, score.Num[3], 1e-9, "mean imputation")

	city, _ := res.Table.Column("city")
	assert.Equal(t, table.KindNumeric, city.Kind)
	assert.Equal(t, 3.0, city.Num[0], "paris after Unknown, lyon, nice")
	assert.Equal(t, 0.0, city.Num[5], "placeholder sorts first")

	day, _ := res.Table.Column("joined_dayofweek")
	assert.Equal(t, 0.0, day.Num[0], "2021-03-01 is a Monday")
	year, _ := res.Table.Column("joined_year")
	assert.Equal(t, 2021.0, year.Num[10])

	assert.Equal(t, 3, in.Width(), "input untouched")
	assert.True(t, in.Col(0).IsNull(3))
}

func TestTransformOneHotAndScaling(t *testing.T) {
	cfg := config.DefaultPreprocessing()
	cfg.CategoricalEncoding.Method = config.EncodeOneHot
	cfg.Scaling.Enabled = true
	cfg.Fillna.Method = config.FillMedian

	res, err := Transform(mixedTable(), cfg, Options{})
	require.NoError(t, err)
	assertInvariants(t, res)

	names := res.Table.Names()
	assert.NotContains(t, names, "city")
	assert.Equal(t, []string{"city_lyon", "city_nice", "city_paris"}, names[len(names)-3:])

	score, _ := res.Table.Column("score")
	mean, variance := stat.PopMeanVariance(score.Num, nil)
	assert.InDelta(t, 0, mean, 1e-9)
	assert.InDelta(t, 1, variance, 1e-9)

	cfg.Scaling.Method = config.ScaleMinMax
	res, err = Transform(mixedTable(), cfg, Options{})
	require.NoError(t, err)
	score, _ = res.Table.Column("score")
	for _, v := range score.Num {
		assert.True(t, v >= 0 && v <= 1, "%v out of range", v)
	}
}

func TestTransformDropRows(t *testing.T) {
	cfg := config.DefaultPreprocessing()
	cfg.Fillna.Method = config.FillDrop
	res, err := Transform(mixedTable(), cfg, Options{})
	require.NoError(t, err)
	assert.Equal(t, 28, res.Table.Rows())
	assertInvariants(t, res)
}

func TestTransformScenarioTextVectorization(t *testing.T) {
	in := reviewTable(60)
	cfg := config.DefaultPreprocessing()
	cfg.TextVectorization.Enabled = true
	cfg.TextVectorization.MaxFeatures = 50

	res, err := Transform(in, cfg, Options{})
	require.NoError(t, err)
	assertInvariants(t, res)
	assert.Equal(t, []string{"review"}, res.Groups.Text)

	names := res.Table.Names()
	assert.NotContains(t, names, "review")
	assert.LessOrEqual(t, len(names), 50)
	assert.NotEmpty(t, names)
	for _, n := range names {
		assert.True(t, strings.HasPrefix(n, "review_vec_"), n)
		c, _ := res.Table.Column(n)
		assert.Equal(t, table.KindNumeric, c.Kind)
	}
}

func TestTransformTextFeaturesAndSkip(t *testing.T) {
	cfg := config.DefaultPreprocessing()
	cfg.TextPreprocessing.ExtractFeatures = true
	cfg.TextVectorization.Enabled = true
	cfg.SkipVectorization = []string{"review"}

	res, err := Transform(reviewTable(60), cfg, Options{})
	require.NoError(t, err)
	assertInvariants(t, res)
	assert.Equal(t, []string{
		"review", "review_word_count", "review_char_count", "review_avg_word_length",
		"review_sentence_count", "review_uppercase_count", "review_punctuation_count",
	}, res.Table.Names())

	review, _ := res.Table.Column("review")
	assert.True(t, strings.HasPrefix(review.Str[0], "order 0 arrived"), "lowercased: %s", review.Str[0])
	words, _ := res.Table.Column("review_word_count")
	assert.Equal(t, 15.0, words.Num[0])
}

func TestTransformTweetColumnUsesSocialCleaning(t *testing.T) {
	var rows [][]string
	for i := 0; i < 60; i++ {
		rows = append(rows, []string{fmt.Sprintf("@fan%d loving the new album #music %d times over and over", i, i)})
	}
	res, err := Transform(table.FromRecords([]string{"tweet_text"}, rows), config.DefaultPreprocessing(), Options{})
	require.NoError(t, err)
	c, _ := res.Table.Column("tweet_text")
	assert.Equal(t, "USER_MENTION loving the new album music times over and over", c.Str[7])
}

func TestTransformVectorizeWarning(t *testing.T) {
	var rows [][]string
	for i := 0; i < 60; i++ {
		rows = append(rows, []string{strings.Repeat("the and of ", i%5+1) + fmt.Sprintf("%c", 'a'+i%26) + strings.Repeat(" ", i)})
	}
	cfg := config.DefaultPreprocessing()
	cfg.TextVectorization.Enabled = true
	cfg.TextPreprocessing.RemoveWhitespace = false

	res, err := Transform(table.FromRecords([]string{"noise"}, rows), cfg, Options{})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "noise", res.Warnings[0].Column)
	assert.Equal(t, "vectorize", res.Warnings[0].Stage)
	assert.ErrorIs(t, res.Warnings[0], ErrEmptyVocabulary)
	assert.Equal(t, []string{"noise"}, res.Table.Names(), "column kept")
}

func TestTransformEmptyResult(t *testing.T) {
	cfg := config.DefaultPreprocessing()
	cfg.DropColumns = []string{"score", "city", "joined"}
	_, err := Transform(mixedTable(), cfg, Options{})
	var empty *EmptyResultError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, "drop", empty.Stage)

	cfg = config.DefaultPreprocessing()
	cfg.Fillna.Method = config.FillDrop
	in := table.FromRecords([]string{"a", "b"}, [][]string{{"1", ""}, {"", "x"}})
	_, err = Transform(in, cfg, Options{})
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, "impute", empty.Stage)
}

func TestTransformAllMissingColumnDropped(t *testing.T) {
	in := table.FromRecords([]string{"x", "blank"}, [][]string{{"a", ""}, {"b", "NA"}})
	res, err := Transform(in, config.DefaultPreprocessing(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, res.Table.Names())
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "classify", res.Warnings[0].Stage)
}

func TestTransformInvalidConfig(t *testing.T) {
	cfg := config.DefaultPreprocessing()
	cfg.Scaling.Method = "robust"
	_, err := Transform(mixedTable(), cfg, Options{})
	var ce *config.ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestSanitizeNames(t *testing.T) {
	in := table.MustNew(
		table.NumericColumn("a[1]", []float64{1}, nil),
		table.NumericColumn("a_1_", []float64{2}, nil),
		table.NumericColumn(" x<y ", []float64{3}, nil),
	)
	out, err := sanitize(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_1_", "a_1__1", "x_y"}, out.Names())
}

func infTable() *table.Table {
	var rows [][]string
	for i := 0; i < 40; i++ {
		v := fmt.Sprintf("%g", float64(i)*2.5)
		switch i {
		case 0:
			v = "inf"
		case 5:
			v = "-Infinity"
		}
		rows = append(rows, []string{v})
	}
	return table.FromRecords([]string{"v"}, rows)
}

func TestTransformImputesInfiniteValues(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  func(*config.Preprocessing)
	}{
		{"standard scaling", func(c *config.Preprocessing) { c.Scaling.Enabled = true }},
		{"minmax scaling", func(c *config.Preprocessing) {
			c.Scaling.Enabled = true
			c.Scaling.Method = config.ScaleMinMax
		}},
		{"median fill", func(c *config.Preprocessing) { c.Fillna.Method = config.FillMedian }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultPreprocessing()
			tc.cfg(&cfg)
			res, err := Transform(infTable(), cfg, Options{})
			require.NoError(t, err)
			assertInvariants(t, res)
			c, ok := res.Table.Column("v")
			require.True(t, ok)
			for i, v := range c.Num {
				assert.False(t, math.IsInf(v, 0) || math.IsNaN(v), "row %d = %v", i, v)
			}
		})
	}

	cfg := config.DefaultPreprocessing()
	cfg.Fillna.Method = config.FillMedian
	res, err := Transform(infTable(), cfg, Options{})
	require.NoError(t, err)
	c, _ := res.Table.Column("v")
	// finite values are 2.5*i for i in 1..39 except 5: median of 38 values
	assert.Equal(t, c.Num[0], c.Num[5])
	assert.InDelta(t, 51.25, c.Num[0], 1e-9)
}

func TestFillRemainingCatchesLateNonFiniteCells(t *testing.T) {
	tr := &transformer{log: zerolog.Nop()}
	in := table.MustNew(
		table.NumericColumn("n", []float64{1, math.Inf(1), math.NaN()}, nil),
		table.StringColumn("s", []string{"a", "", "c"}, []bool{false, true, false}),
	)
	out := tr.fillRemaining(in)
	n, _ := out.Column("n")
	assert.Equal(t, []float64{1, 0, 0}, n.Num)
	assert.Zero(t, out.Missing())
	require.Len(t, tr.warnings, 2)
	assert.Equal(t, "transform", tr.warnings[0].Stage)
}

func TestLabelEncodingKeepsNumericOrder(t *testing.T) {
	var rows [][]string
	for i := 0; i < 36; i++ {
		rows = append(rows, []string{fmt.Sprint(i%12 + 1)})
	}
	res, err := Transform(table.FromRecords([]string{"month"}, rows), config.DefaultPreprocessing(), Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"month"}, res.Groups.Categorical)
	c, _ := res.Table.Column("month")
	for i, code := range c.Num {
		assert.Equal(t, float64(i%12), code, "month %d", i%12+1)
	}
}

func TestTransformCleansURLsInText(t *testing.T) {
	var rows [][]string
	for i := 0; i < 60; i++ {
		rows = append(rows, []string{fmt.Sprintf(
			"Order %d details at https://shop.example.com/o/%d or mail help@shop.example.com", i, i)})
	}
	res, err := Transform(table.FromRecords([]string{"note"}, rows), config.DefaultPreprocessing(), Options{})
	require.NoError(t, err)
	c, _ := res.Table.Column("note")
	assert.Equal(t, "order 0 details at or mail", c.Str[0])
	for _, s := range c.Str {
		assert.NotContains(t, s, "http")
		assert.NotContains(t, s, "@")
	}
}

func TestTransformWarnsWhenTextStaysText(t *testing.T) {
	res, err := Transform(reviewTable(60), config.DefaultPreprocessing(), Options{})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "review", res.Warnings[0].Column)
	assert.ErrorIs(t, res.Warnings[0], ErrKeptAsText)

	cfg := config.DefaultPreprocessing()
	cfg.TextVectorization.Enabled = true
	res, err = Transform(reviewTable(60), cfg, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings, "vectorized and dropped")
}
