package extracts

import (
	"fmt"
	"strings"
	"testing"
)

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{"semicolon cordis dump", "id;acronym;title\n123;FOO;Bar", ';'},
		{"comma", "id,acronym,title\n123,FOO,Bar", ','},
		{"tab", "id\tacronym\ttitle", '\t'},
		{"quoted separators ignored", `id;"a,b,c,d,e";title`, ';'},
		{"only first line counts", "id;x\na,b,c,d,e,f,g", ';'},
		{"no separator defaults to semicolon", "justoneheader", ';'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SniffDelimiter(tt.sample); got != tt.want {
				t.Errorf("SniffDelimiter(%q) = %q, want %q", tt.sample, got, tt.want)
			}
		})
	}
}

func TestReadTable(t *testing.T) {
	data := "projectID;Acronym;totalCost\n" +
		"101;ALPHA;1000,50\n" +
		"102;BETA\n" + // ragged row, tolerated
		"103;\"GAM;MA\";2000\n"

	table, skipped, err := ReadTable(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(table.Rows))
	}

	// Spalten-Lookup ist case-insensitiv
	if got := table.Col(table.Rows[0], "projectid"); got != "101" {
		t.Errorf("Col(projectid) = %q, want 101", got)
	}
	if got := table.Col(table.Rows[0], "ACRONYM"); got != "ALPHA" {
		t.Errorf("Col(ACRONYM) = %q, want ALPHA", got)
	}

	// Quoted Separator bleibt Teil des Werts
	if got := table.Col(table.Rows[2], "acronym"); got != "GAM;MA" {
		t.Errorf("quoted field = %q, want GAM;MA", got)
	}

	// Ragged Row: fehlende Spalte liefert leeren Wert statt Fehler
	if got := table.Col(table.Rows[1], "totalCost"); got != "" {
		t.Errorf("missing cell = %q, want empty", got)
	}

	if !table.HasColumn("totalcost") {
		t.Error("HasColumn(totalcost) = false, want true")
	}
	if table.HasColumn("nope") {
		t.Error("HasColumn(nope) = true, want false")
	}
}

func TestReadTableStreamsBeyondSniffWindow(t *testing.T) {
	// Eingabe deutlich größer als Peek-Fenster und Lesepuffer
	var b strings.Builder
	b.WriteString("projectID;title\n")
	for i := 0; i < 5000; i++ {
		fmt.Fprintf(&b, "%d;project number %d with some padding text\n", i, i)
	}

	table, skipped, err := ReadTable(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(table.Rows) != 5000 {
		t.Fatalf("rows = %d, want 5000", len(table.Rows))
	}
	if got := table.Col(table.Rows[4999], "projectID"); got != "4999" {
		t.Errorf("last row id = %q, want 4999", got)
	}
}

func TestReadTableEmptyInput(t *testing.T) {
	if _, _, err := ReadTable(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty extract")
	}
}
