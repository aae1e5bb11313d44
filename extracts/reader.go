package extracts

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// sniffSize begrenzt das Peek-Fenster für die Delimiter-Erkennung.
const sniffSize = 4096

// Table ist ein eingelesener Roh-Extrakt: Header plus Datenzeilen.
// Lookups go through the lowercased header so the parsers are robust against
// the casing drift between CORDIS framework releases (projectID vs projectId).
type Table struct {
	columns map[string]int
	Rows    [][]string
}

// Col returns the value of the named column for a row, "" when the column is
// missing or the row is too short (ragged rows are tolerated, not rejected).
func (t *Table) Col(row []string, name string) string {
	idx, ok := t.columns[strings.ToLower(name)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// HasColumn meldet, ob die Spalte im Extrakt vorhanden ist.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[strings.ToLower(name)]
	return ok
}

// SniffDelimiter samples the beginning of the data and picks the separator
// (';' in the official CORDIS dumps, ',' or tab elsewhere) by counting
// occurrences outside quoted sections in the first line.
func SniffDelimiter(sample string) rune {
	if i := strings.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}
	counts := map[rune]int{';': 0, ',': 0, '\t': 0}
	inQuotes := false
	for _, r := range sample {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		if _, ok := counts[r]; ok {
			counts[r]++
		}
	}
	best, bestCount := ';', counts[';']
	for _, cand := range []rune{',', '\t'} {
		if counts[cand] > bestCount {
			best, bestCount = cand, counts[cand]
		}
	}
	return best
}

// ReadTable liest einen Extrakt tolerant und streamend ein; der Delimiter
// wird aus einem Peek-Fenster erkannt, ohne die Datei in den Speicher zu
// ziehen. Quoting errors and ragged rows do not abort the read; broken lines
// are dropped and reported in skipped so the loader can count them.
func ReadTable(r io.Reader) (*Table, int, error) {
	br := bufio.NewReaderSize(r, 64<<10)
	sample, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF {
		return nil, 0, err
	}
	if len(sample) == 0 {
		return nil, 0, fmt.Errorf("empty extract")
	}

	cr := csv.NewReader(br)
	cr.Comma = SniffDelimiter(string(sample))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	table := &Table{columns: columns}
	skipped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Kaputte Zeile überspringen, Rest weiterlesen
			skipped++
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, skipped, nil
}

// ReadTableFile öffnet die Datei und liest sie als Extrakt-Tabelle.
func ReadTableFile(path string) (*Table, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return ReadTable(f)
}
