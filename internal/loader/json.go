package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// orderedRecord keeps object keys in document order.
type orderedRecord struct {
	keys []string
	vals map[string]json.RawMessage
}

func loadJSON(p string) (*Source, error) {
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, unreadable(p, "read failed", err)
	}
	t, err := parseRecordJSON(raw)
	if err == nil {
		return &Source{Format: "json", Encoding: "utf-8", Table: t}, nil
	}
	t, lerr := parseLineJSON(raw)
	if lerr == nil {
		return &Source{Format: "ndjson", Encoding: "utf-8", Table: t}, nil
	}
	return nil, unreadable(p, "neither record nor line-delimited JSON", errors.Join(err, lerr))
}

// parseRecordJSON accepts an array of objects, or an object keyed by column
// whose values are arrays or index-keyed objects.
func parseRecordJSON(raw []byte) (*table.Table, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	var t *table.Table
	switch tok {
	case json.Delim('['):
		var recs []orderedRecord
		for dec.More() {
			rec, err := readObject(dec)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		t, err = recordsToTable(recs)
		if err != nil {
			return nil, err
		}
	case json.Delim('{'):
		t, err = readColumns(dec)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unexpected top-level token %v", tok)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after JSON document")
	}
	return t, nil
}

func parseLineJSON(raw []byte) (*table.Table, error) {
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	var recs []orderedRecord
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		tok, err := dec.Token()
		if err != nil || tok != json.Delim('{') {
			return nil, fmt.Errorf("line %d: not a JSON object", line)
		}
		rec, err := readObjectBody(dec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("no records")
	}
	return recordsToTable(recs)
}

func readObject(dec *json.Decoder) (orderedRecord, error) {
	tok, err := dec.Token()
	if err != nil {
		return orderedRecord{}, err
	}
	if tok != json.Delim('{') {
		return orderedRecord{}, fmt.Errorf("expected object, got %v", tok)
	}
	return readObjectBody(dec)
}

// readObjectBody reads key/value pairs after an opening brace.
func readObjectBody(dec *json.Decoder) (orderedRecord, error) {
	rec := orderedRecord{vals: map[string]json.RawMessage{}}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return rec, err
		}
		key, ok := kt.(string)
		if !ok {
			return rec, fmt.Errorf("expected key, got %v", kt)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return rec, err
		}
		if _, seen := rec.vals[key]; !seen {
			rec.keys = append(rec.keys, key)
		}
		rec.vals[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return rec, err
	}
	return rec, nil
}

func recordsToTable(recs []orderedRecord) (*table.Table, error) {
	var names []string
	pos := map[string]int{}
	for _, r := range recs {
		for _, k := range r.keys {
			if _, ok := pos[k]; !ok {
				pos[k] = len(names)
				names = append(names, k)
			}
		}
	}
	cols := make([][]table.Cell, len(names))
	for j := range cols {
		cols[j] = make([]table.Cell, len(recs))
	}
	for i, r := range recs {
		for j, n := range names {
			v, ok := r.vals[n]
			if !ok {
				cols[j][i] = table.NullCell()
				continue
			}
			cols[j][i] = rawCell(v)
		}
	}
	return table.FromColumnCells(names, cols)
}

// readColumns handles {"col": [..]} and {"col": {"0": v, ...}} layouts.
func readColumns(dec *json.Decoder) (*table.Table, error) {
	outer, err := readObjectBody(dec)
	if err != nil {
		return nil, err
	}
	cols := make([][]table.Cell, len(outer.keys))
	rows := -1
	for j, k := range outer.keys {
		body := outer.vals[k]
		var cells []table.Cell
		switch {
		case len(body) > 0 && body[0] == '[':
			var items []json.RawMessage
			if err := json.Unmarshal(body, &items); err != nil {
				return nil, err
			}
			for _, it := range items {
				cells = append(cells, rawCell(it))
			}
		case len(body) > 0 && body[0] == '{':
			inner := json.NewDecoder(bytes.NewReader(body))
			inner.UseNumber()
			rec, err := readObject(inner)
			if err != nil {
				return nil, err
			}
			for _, ik := range rec.keys {
				cells = append(cells, rawCell(rec.vals[ik]))
			}
		default:
			return nil, fmt.Errorf("column %q is not an array or object", k)
		}
		if rows >= 0 && len(cells) != rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", k, len(cells), rows)
		}
		rows = len(cells)
		cols[j] = cells
	}
	return table.FromColumnCells(outer.keys, cols)
}

func rawCell(v json.RawMessage) table.Cell {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || string(v) == "null" {
		return table.NullCell()
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return table.StrCell(string(v))
		}
		if table.IsMissingToken(s) {
			return table.NullCell()
		}
		return table.StrCell(s)
	case 't', 'f':
		return table.StrCell(strconv.FormatBool(v[0] == 't'))
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return table.StrCell(string(v))
		}
		return table.StrCell(buf.String())
	}
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return table.StrCell(string(v))
	}
	return table.NumCell(f)
}
