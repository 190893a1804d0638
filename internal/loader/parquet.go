package loader

import (
	"context"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

func loadParquet(ctx context.Context, p string) (*Source, error) {
	rdr, err := file.OpenParquetFile(p, false)
	if err != nil {
		return nil, unreadable(p, "invalid parquet file", err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, unreadable(p, "parquet schema", err)
	}
	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, unreadable(p, "parquet read", err)
	}
	defer tbl.Release()

	n := int(tbl.NumCols())
	names := make([]string, n)
	cols := make([][]table.Cell, n)
	for i := 0; i < n; i++ {
		col := tbl.Column(i)
		names[i] = col.Name()
		cells := make([]table.Cell, 0, tbl.NumRows())
		for _, chunk := range col.Data().Chunks() {
			cells = appendArrowCells(cells, chunk)
		}
		cols[i] = cells
	}
	t, err := table.FromColumnCells(names, cols)
	if err != nil {
		return nil, unreadable(p, "parquet columns", err)
	}
	return &Source{Format: "parquet", Table: t}, nil
}

func appendArrowCells(dst []table.Cell, arr arrow.Array) []table.Cell {
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			dst = append(dst, table.NullCell())
			continue
		}
		switch a := arr.(type) {
		case *array.Float64:
			dst = append(dst, table.NumCell(a.Value(i)))
		case *array.Float32:
			dst = append(dst, table.NumCell(float64(a.Value(i))))
		case *array.Int64:
			dst = append(dst, table.NumCell(float64(a.Value(i))))
		case *array.Int32:
			dst = append(dst, table.NumCell(float64(a.Value(i))))
		case *array.Int16:
			dst = append(dst, table.NumCell(float64(a.Value(i))))
		case *array.Int8:
			dst = append(dst, table.NumCell(float64(a.Value(i))))
		case *array.Uint64:
			dst = append(dst, table.NumCell(float64(a.Value(i))))
		case *array.Uint32:
			dst = append(dst, table.NumCell(float64(a.Value(i))))
		case *array.Uint16:
			dst = append(dst, table.NumCell(float64(a.Value(i))))
		case *array.Uint8:
			dst = append(dst, table.NumCell(float64(a.Value(i))))
		case *array.Boolean:
			dst = append(dst, table.StrCell(strconv.FormatBool(a.Value(i))))
		case *array.String:
			dst = append(dst, table.StrCell(a.Value(i)))
		case *array.LargeString:
			dst = append(dst, table.StrCell(a.Value(i)))
		default:
			dst = append(dst, table.StrCell(arr.ValueStr(i)))
		}
	}
	return dst
}
