// Package loader turns files on disk into tables. Delimited text is probed
// across encodings and delimiters; spreadsheets, JSON and Parquet are
// dispatched by extension.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Options tunes loading. The zero value auto-detects everything.
type Options struct {
	// Delimiter forces a delimiter for text files; 0 means detect.
	Delimiter rune
	// SheetName selects an XLSX sheet by name.
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based index when SheetName is empty.
	SheetIndex int
	Logger     *zerolog.Logger
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	l := zerolog.Nop()
	return &l
}

// Source describes how a file was read.
type Source struct {
	Path      string
	Format    string
	Encoding  string
	Delimiter string
	// SkippedRows counts malformed rows dropped while reading.
	SkippedRows int
	Table       *table.Table
}

// Load reads path into a table.
func Load(path string, opt Options) (*table.Table, error) {
	src, err := Inspect(path, opt)
	if err != nil {
		return nil, err
	}
	return src.Table, nil
}

// Inspect reads path and reports the detected format alongside the table.
func Inspect(path string, opt Options) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, unreadable(path, "cannot access file", err)
	}
	var (
		src *Source
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		src, err = loadXLSX(path, opt.SheetName, opt.SheetIndex)
	case ".xls":
		return nil, unreadable(path, "legacy binary .xls workbooks are not supported; save as .xlsx", nil)
	case ".json", ".jsonl", ".ndjson":
		src, err = loadJSON(path)
	case ".parquet", ".pq":
		src, err = loadParquet(context.Background(), path)
	default:
		src, err = loadDelimited(path, opt.Delimiter, opt.logger())
	}
	if err != nil {
		return nil, err
	}
	src.Path = path
	opt.logger().Debug().
		Str("path", path).
		Str("format", src.Format).
		Str("encoding", src.Encoding).
		Str("delimiter", src.Delimiter).
		Int("rows", src.Table.Rows()).
		Int("columns", src.Table.Width()).
		Int("skipped_rows", src.SkippedRows).
		Msg("loaded table")
	return src, nil
}

func loadDelimited(path string, forced rune, log *zerolog.Logger) (*Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, unreadable(path, "read failed", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, unreadable(path, "file is empty", nil)
	}

	if forced != 0 {
		for _, enc := range Encodings {
			if src, ok := fullRead(raw, enc, forced); ok {
				return src, nil
			}
		}
		return nil, unreadable(path, fmt.Sprintf("no encoding could be read with delimiter %q", forced), nil)
	}

	for _, enc := range Encodings {
		text, err := decode(raw, enc)
		if err != nil {
			log.Debug().Str("encoding", enc).Err(err).Msg("encoding rejected")
			continue
		}
		best := bestCandidate(text)
		if best.score >= minScore {
			if src, ok := fullRead(raw, enc, best.delim); ok {
				return src, nil
			}
		}
	}

	for _, enc := range Encodings {
		text, err := decode(raw, enc)
		if err != nil {
			continue
		}
		d, ok := sniff(text)
		if !ok {
			continue
		}
		if src, ok := fullRead(raw, enc, d); ok {
			log.Debug().Str("encoding", enc).Str("delimiter", string(d)).Msg("delimiter sniffed")
			return src, nil
		}
	}

	if src, ok := fullRead(raw, "latin-1", ','); ok {
		return src, nil
	}
	return nil, unreadable(path, "no encoding/delimiter combination produced a table", nil)
}

func fullRead(raw []byte, enc string, delim rune) (*Source, bool) {
	text, err := decode(raw, enc)
	if err != nil {
		return nil, false
	}
	header, rows, skipped, err := readDelimited(text, delim, 0)
	if err != nil || len(header) == 0 {
		return nil, false
	}
	return &Source{
		Format:      "delimited",
		Encoding:    enc,
		Delimiter:   string(delim),
		SkippedRows: skipped,
		Table:       table.FromRecords(header, rows),
	}, true
}
