package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestRoundTripEveryDelimiterAndEncoding(t *testing.T) {
	rows := [][]string{
		{"name", "age", "city"},
		{"café", "31", "Zürich"},
		{"naïve", "", "Paris"},
		{"jo", "44", "Köln"},
		{"li", "29", "Lyon"},
	}
	for _, enc := range Encodings {
		for _, d := range Delimiters {
			t.Run(fmt.Sprintf("%s/%q", enc, d), func(t *testing.T) {
				var lines []string
				for _, r := range rows {
					lines = append(lines, strings.Join(r, string(d)))
				}
				data, err := Encode(strings.Join(lines, "\n")+"\n", enc)
				require.NoError(t, err)

				src, err := Inspect(writeFile(t, "data.txt", data), Options{})
				require.NoError(t, err)
				assert.Equal(t, 4, src.Table.Rows())
				assert.Equal(t, 3, src.Table.Width())
				assert.Equal(t, string(d), src.Delimiter)
				assert.Equal(t, []string{"name", "age", "city"}, src.Table.Names())

				name, _ := src.Table.Column("name")
				assert.Equal(t, "café", name.Value(0))
			})
		}
	}
}

func TestSemicolonWinsWhenFieldsCarryCommas(t *testing.T) {
	body := strings.Join([]string{
		`"first, name";"last, name";"city, country"`,
		`"Ada, A";"Lovelace, B";"London, UK"`,
		`"Alan, M";"Turing, C";"Wilmslow, UK"`,
		`"Grace, B";"Hopper, D";"Arlington, US"`,
	}, "\n")
	src, err := Inspect(writeFile(t, "people.csv", []byte(body)), Options{})
	require.NoError(t, err)
	assert.Equal(t, ";", src.Delimiter)
	assert.Equal(t, 3, src.Table.Width())
	assert.Equal(t, 3, src.Table.Rows())
	assert.Equal(t, "first, name", src.Table.Names()[0])
}

func TestScoreCandidate(t *testing.T) {
	assert.Zero(t, ScoreCandidate(1, []string{"a"}, ','))
	assert.Equal(t, 3.0, ScoreCandidate(3, []string{"a", "b"}, ','))

	bunched := []string{"a,b", "c,d", "e"}
	assert.InDelta(t, 0.3, ScoreCandidate(3, bunched, ','), 1e-9)
	assert.Equal(t, 3.0, ScoreCandidate(3, bunched, ';'))

	half := []string{"a,b", "c"}
	assert.Equal(t, 2.0, ScoreCandidate(2, half, ','))
}

func TestMalformedRowsAreSkippedOrPadded(t *testing.T) {
	body := "a,b,c\n1,2,3\n4,5,6,7,8\n9,10\n11,12,13\n"
	src, err := Inspect(writeFile(t, "bad.csv", []byte(body)), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, src.Table.Rows())
	assert.Equal(t, 1, src.SkippedRows)
	c, _ := src.Table.Column("c")
	assert.True(t, c.IsNull(1))
}

func TestSingleColumnFallsBackToDefaultRead(t *testing.T) {
	body := "review\nthe movie was great\nterrible acting overall\nfine I guess\n"
	tb, err := Load(writeFile(t, "reviews.txt", []byte(body)), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, tb.Width())
	assert.Equal(t, 3, tb.Rows())
}

func TestSniffFallbackFindsColon(t *testing.T) {
	d, ok := sniff("a:b\n1:2\n3:4\n")
	require.True(t, ok)
	assert.Equal(t, ':', d)

	_, ok = sniff("a b\nc d\n")
	assert.False(t, ok)

	d, ok = sniff("\"x,y\";z\n\"p,q\";r\n")
	require.True(t, ok)
	assert.Equal(t, ';', d)
}

func TestForcedDelimiter(t *testing.T) {
	src, err := Inspect(writeFile(t, "f.csv", []byte("a|b\n1|2\n")), Options{Delimiter: '|'})
	require.NoError(t, err)
	assert.Equal(t, 2, src.Table.Width())
}

func TestUnreadableFiles(t *testing.T) {
	var ue *UnreadableFileError

	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	require.True(t, errors.As(err, &ue))

	_, err = Load(writeFile(t, "empty.csv", []byte("  \n")), Options{})
	require.True(t, errors.As(err, &ue))
	assert.Contains(t, ue.Error(), "empty")

	_, err = Load(writeFile(t, "old.xls", []byte("binary")), Options{})
	require.True(t, errors.As(err, &ue))

	_, err = Load(writeFile(t, "bad.json", []byte("{not json")), Options{})
	require.True(t, errors.As(err, &ue))
}

func TestLoadJSONLayouts(t *testing.T) {
	records := `[{"b": 1, "a": "x"}, {"b": null, "a": "y", "c": true}]`
	tb, err := Load(writeFile(t, "r.json", []byte(records)), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, tb.Names())
	assert.Equal(t, 2, tb.Rows())
	b, _ := tb.Column("b")
	assert.Equal(t, table.KindNumeric, b.Kind)
	assert.True(t, b.IsNull(1))
	c, _ := tb.Column("c")
	assert.True(t, c.IsNull(0))
	assert.Equal(t, "true", c.Value(1))

	columns := `{"x": {"0": 1.5, "1": 2.5}, "y": {"0": "u", "1": "v"}}`
	tb, err = Load(writeFile(t, "c.json", []byte(columns)), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, tb.Names())
	assert.Equal(t, 2, tb.Rows())

	lines := "{\"k\": 1, \"v\": \"a\"}\n\n{\"k\": 2, \"v\": \"b\"}\n"
	src, err := Inspect(writeFile(t, "l.json", []byte(lines)), Options{})
	require.NoError(t, err)
	assert.Equal(t, "ndjson", src.Format)
	assert.Equal(t, 2, src.Table.Rows())
}

func TestLoadParquet(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "score", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "count", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "label", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.Float64Builder).AppendValues([]float64{1.5, 0, 3.25}, []bool{true, false, true})
	b.Field(1).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	b.Field(2).(*array.StringBuilder).AppendValues([]string{"a", "b", "a"}, nil)
	rec := b.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	var buf bytes.Buffer
	require.NoError(t, pqarrow.WriteTable(tbl, &buf, 1024, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))

	src, err := Inspect(writeFile(t, "d.parquet", buf.Bytes()), Options{})
	require.NoError(t, err)
	assert.Equal(t, "parquet", src.Format)
	assert.Equal(t, []string{"score", "count", "label"}, src.Table.Names())
	score, _ := src.Table.Column("score")
	assert.Equal(t, table.KindNumeric, score.Kind)
	assert.True(t, score.IsNull(1))
	label, _ := src.Table.Column("label")
	assert.Equal(t, table.KindString, label.Kind)
}
