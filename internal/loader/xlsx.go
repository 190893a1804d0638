package loader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// workbook is an opened .xlsx archive with its sheet index resolved.
type workbook struct {
	zr     *zip.Reader
	sheets []sheetEntry
	rels   map[string]string
	shared []string
}

type sheetEntry struct {
	Name    string
	SheetID int
	RID     string
}

func loadXLSX(p, sheetName string, sheetIndex int) (*Source, error) {
	wb, err := openWorkbook(p)
	if err != nil {
		return nil, unreadable(p, "invalid xlsx archive", err)
	}
	target, err := wb.resolve(sheetName, sheetIndex)
	if err != nil {
		return nil, unreadable(p, "sheet selection", err)
	}
	rows := wb.rows(target)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, unreadable(p, "sheet has no header row", nil)
	}
	header := rows[0]
	var data [][]string
	skipped := 0
	for _, r := range rows[1:] {
		if len(r) > len(header) {
			skipped++
			continue
		}
		data = append(data, r)
	}
	return &Source{Format: "xlsx", Encoding: "utf-8", SkippedRows: skipped, Table: table.FromRecords(header, data)}, nil
}

func openWorkbook(p string) (*workbook, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	wb := &workbook{zr: zr}
	wb.sheets = parseSheetEntries(wb.file("xl/workbook.xml"))
	wb.rels = parseRels(wb.file("xl/_rels/workbook.xml.rels"))
	wb.shared = parseSharedStrings(wb.file("xl/sharedStrings.xml"))
	return wb, nil
}

func (wb *workbook) file(name string) []byte {
	for _, f := range wb.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// resolve maps a sheet name or 1-based index to the worksheet part path.
func (wb *workbook) resolve(name string, index int) (string, error) {
	if name != "" {
		for _, s := range wb.sheets {
			if strings.EqualFold(s.Name, name) {
				if rel, ok := wb.rels[s.RID]; ok {
					return relPartPath(rel), nil
				}
			}
		}
		names := make([]string, len(wb.sheets))
		for i, s := range wb.sheets {
			names[i] = s.Name
		}
		return "", fmt.Errorf("sheet %q not found (available: %s)", name, strings.Join(names, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.sheets {
		if s.SheetID == index {
			if rel, ok := wb.rels[s.RID]; ok {
				return relPartPath(rel), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

// rows decodes every row of a worksheet into text cells.
func (wb *workbook) rows(target string) [][]string {
	data := wb.file(target)
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		out   [][]string
		cur   []string
		inRow bool
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch {
			case el.Name.Local == "row":
				inRow, cur = true, nil
			case inRow && el.Name.Local == "c":
				var ref, typ string
				for _, a := range el.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				idx := len(cur)
				if ref != "" {
					idx = columnIndex(ref)
				}
				for len(cur) <= idx {
					cur = append(cur, "")
				}
				cur[idx] = wb.cellValue(dec, typ)
			}
		case xml.EndElement:
			if el.Name.Local == "row" {
				inRow = false
				out = append(out, cur)
			}
		}
	}
}

// cellValue consumes tokens up to the end of a <c> element.
func (wb *workbook) cellValue(dec *xml.Decoder, typ string) string {
	var val string
	for {
		tok, err := dec.Token()
		if err != nil {
			return val
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "v" || el.Name.Local == "t" {
				var text string
				if err := dec.DecodeElement(&text, &el); err == nil {
					val += text
				}
			}
		case xml.EndElement:
			if el.Name.Local != "c" {
				continue
			}
			if typ == "s" {
				i := leadingInt(val)
				if i >= 0 && i < len(wb.shared) {
					return wb.shared[i]
				}
				return ""
			}
			return val
		}
	}
}

func parseSheetEntries(data []byte) []sheetEntry {
	var out []sheetEntry
	eachStart(data, func(el xml.StartElement) {
		if el.Name.Local != "sheet" {
			return
		}
		var s sheetEntry
		for _, a := range el.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "sheetId":
				s.SheetID = leadingInt(a.Value)
			case "id":
				s.RID = a.Value
			}
		}
		out = append(out, s)
	})
	return out
}

func parseRels(data []byte) map[string]string {
	out := map[string]string{}
	eachStart(data, func(el xml.StartElement) {
		if el.Name.Local != "Relationship" {
			return
		}
		var id, target string
		for _, a := range el.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	})
	return out
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		out []string
		buf strings.Builder
		inT bool
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inT {
				buf.Write(el)
			}
		}
	}
}

func eachStart(data []byte, fn func(xml.StartElement)) {
	if len(data) == 0 {
		return
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		if el, ok := tok.(xml.StartElement); ok {
			fn(el)
		}
	}
}

// columnIndex converts a cell reference such as "C12" to a 0-based column.
func columnIndex(ref string) int {
	idx := 0
	for _, r := range strings.ToUpper(ref) {
		if r < 'A' || r > 'Z' {
			break
		}
		idx = idx*26 + int(r-'A'+1)
	}
	return idx - 1
}

func leadingInt(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// relPartPath turns a workbook relationship target into a zip entry name.
// Targets may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func relPartPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
