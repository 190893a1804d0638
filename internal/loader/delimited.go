package loader

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Delimiters scored for every encoding, in order.
var Delimiters = []rune{',', ';', '\t', '|'}

// sniffDelimiters are considered when scoring finds no candidate.
var sniffDelimiters = []rune{',', ';', '\t', '|', ':'}

const (
	// prefixRows is the number of data rows read when scoring a candidate.
	prefixRows = 20
	// minScore is the score a candidate needs to be accepted.
	minScore = 2.0
	// bunchedThreshold is the share of first-column values still holding the
	// delimiter above which the split is considered wrong.
	bunchedThreshold = 0.5
	// bunchedPenalty multiplies the score of a bunched candidate.
	bunchedPenalty = 0.1
	// sniffLines is the number of lines inspected by the delimiter sniffer.
	sniffLines = 20
)

// ScoreCandidate scores a trial split: the column count, penalised when most
// first-column values still contain the delimiter. Splits with fewer than two
// columns score zero.
func ScoreCandidate(columns int, firstColumn []string, delim rune) float64 {
	if columns < 2 {
		return 0
	}
	score := float64(columns)
	if bunchedRatio(firstColumn, delim) > bunchedThreshold {
		score *= bunchedPenalty
	}
	return score
}

func bunchedRatio(vals []string, delim rune) float64 {
	if len(vals) == 0 {
		return 0
	}
	hit := 0
	for _, v := range vals {
		if strings.ContainsRune(v, delim) {
			hit++
		}
	}
	return float64(hit) / float64(len(vals))
}

// readDelimited parses text with the given delimiter. maxRows <= 0 reads all
// rows. Rows longer than the header and unparsable rows are skipped; short
// rows are padded later by table.FromRecords.
func readDelimited(text string, delim rune, maxRows int) (header []string, rows [][]string, skipped int, err error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	header, err = r.Read()
	if err != nil {
		return nil, nil, 0, err
	}
	for maxRows <= 0 || len(rows) < maxRows {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			skipped++
			continue
		}
		if err != nil {
			return nil, nil, 0, err
		}
		if len(rec) > len(header) {
			skipped++
			continue
		}
		rows = append(rows, rec)
	}
	return header, rows, skipped, nil
}

func firstColumn(rows [][]string) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if len(r) > 0 && !table.IsMissingToken(r[0]) {
			out = append(out, r[0])
		}
	}
	return out
}

type candidate struct {
	delim rune
	score float64
}

// bestCandidate scores every delimiter over a prefix of text.
func bestCandidate(text string) candidate {
	var best candidate
	for _, d := range Delimiters {
		header, rows, _, err := readDelimited(text, d, prefixRows)
		if err != nil || len(header) < 2 || len(rows) == 0 {
			continue
		}
		if s := ScoreCandidate(len(header), firstColumn(rows), d); s > best.score {
			best = candidate{delim: d, score: s}
		}
	}
	return best
}

// sniff picks the first delimiter that occurs the same, non-zero number of
// times on every sampled line, ignoring quoted sections.
func sniff(text string) (rune, bool) {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
		if len(lines) == sniffLines {
			break
		}
	}
	if len(lines) == 0 {
		return 0, false
	}
	for _, d := range sniffDelimiters {
		want := countUnquoted(lines[0], d)
		if want == 0 {
			continue
		}
		ok := true
		for _, l := range lines[1:] {
			if countUnquoted(l, d) != want {
				ok = false
				break
			}
		}
		if ok {
			return d, true
		}
	}
	return 0, false
}

func countUnquoted(line string, d rune) int {
	n := 0
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}
	return n
}
