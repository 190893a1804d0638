package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNames(t *testing.T) {
	cases := []struct {
		in   []string
		want []string
	}{
		{[]string{" a ", "b"}, []string{"a", "b"}},
		{[]string{"a", "a", "a"}, []string{"a", "a.1", "a.2"}},
		{[]string{"x", "", "x "}, []string{"x", "Unnamed: 1", "x.1"}},
		{[]string{"\ufeffid", "v"}, []string{"id", "v"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeNames(c.in))
	}
}

func TestInferColumn(t *testing.T) {
	num := InferColumn("n", []string{"1", " 2.5", "NA", ""})
	require.Equal(t, KindNumeric, num.Kind)
	assert.Equal(t, 2, num.NullCount())
	assert.Equal(t, []float64{1, 2.5}, num.Floats())

	str := InferColumn("s", []string{"1", "two", "null"})
	require.Equal(t, KindString, str.Kind)
	assert.Equal(t, []string{"1", "two"}, str.Present())
	assert.Equal(t, 2, str.Distinct())

	hex := InferColumn("h", []string{"0x10"})
	assert.Equal(t, KindString, hex.Kind)

	allMissing := InferColumn("m", []string{"", "NaN"})
	assert.Equal(t, KindString, allMissing.Kind)
	assert.Equal(t, 2, allMissing.NullCount())
}

func TestFromRecordsPadsShortRows(t *testing.T) {
	tb := FromRecords([]string{"a", "b"}, [][]string{{"1", "x"}, {"2"}})
	require.Equal(t, 2, tb.Rows())
	b, ok := tb.Column("b")
	require.True(t, ok)
	assert.True(t, b.IsNull(1))
	assert.Equal(t, 1, tb.Missing())
	assert.Equal(t, 4, tb.Cells())
}

func TestCopyOnTransform(t *testing.T) {
	tb := FromRecords([]string{"a", "b", "c"}, [][]string{{"1", "x", "y"}, {"2", "z", "w"}})

	dropped := tb.Drop("b")
	assert.Equal(t, []string{"a", "c"}, dropped.Names())
	assert.Equal(t, []string{"a", "b", "c"}, tb.Names())

	repl := tb.Replace("b", NumericColumn("b_0", []float64{0, 1}, nil), NumericColumn("b_1", []float64{1, 0}, nil))
	assert.Equal(t, []string{"a", "b_0", "b_1", "c"}, repl.Names())
	assert.Equal(t, 3, tb.Width())

	filtered := tb.FilterRows([]bool{false, true})
	require.Equal(t, 1, filtered.Rows())
	assert.Equal(t, [][]string{{"2", "z", "w"}}, filtered.Head(5))
	assert.Equal(t, 2, tb.Rows())
}

func TestNewRejectsDuplicatesAndRaggedColumns(t *testing.T) {
	_, err := New(StringColumn("a", []string{"x"}, nil), StringColumn("a", []string{"y"}, nil))
	assert.Error(t, err)
	_, err = New(StringColumn("a", []string{"x"}, nil), StringColumn("b", []string{"y", "z"}, nil))
	assert.Error(t, err)
}

func TestFromCellsMixedFallsBackToString(t *testing.T) {
	c := FromCells("v", []Cell{NumCell(1), StrCell("a"), NullCell()})
	assert.Equal(t, KindString, c.Kind)
	assert.Equal(t, []string{"1", "a"}, c.Present())

	n := FromCells("n", []Cell{NumCell(1.5), NullCell()})
	assert.Equal(t, KindNumeric, n.Kind)
	assert.Equal(t, 1, n.NullCount())
}
