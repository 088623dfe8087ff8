package gradebook

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

func TestParseHeaderCleaning(t *testing.T) {
	rows := [][]string{
		{"Student Name", " Ex 1  ", `"Ex 2"`, "Total Grade", ""},
		{"Ana Torres", "90", "85", "175", ""},
	}

	table, err := NewParser().Parse(rows)
	if err != nil {
		t.Fatal(err)
	}

	wantExercises := []string{"Ex 1", "Ex 2"}
	if !reflect.DeepEqual(table.Exercises, wantExercises) {
		t.Fatalf("exercises = %v, want %v", table.Exercises, wantExercises)
	}

	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table.Rows))
	}
	wantTokens := []string{"90", "85"}
	if !reflect.DeepEqual(table.Rows[0].Tokens, wantTokens) {
		t.Fatalf("tokens = %v, want %v", table.Rows[0].Tokens, wantTokens)
	}
}

func TestParsePositionalAlignment(t *testing.T) {
	// "Total Grade" sits in the middle; the same column must be dropped
	// from every row so grades stay aligned with exercise names.
	rows := [][]string{
		{"Name", "Ex 1", "Total Grade", "Ex 2"},
		{"Ana", "90", "175", "85"},
		{"Luis", "40", "40", "Not Submitted"},
	}

	table, err := NewParser().Parse(rows)
	if err != nil {
		t.Fatal(err)
	}

	if want := []string{"Ex 1", "Ex 2"}; !reflect.DeepEqual(table.Exercises, want) {
		t.Fatalf("exercises = %v, want %v", table.Exercises, want)
	}
	if want := []string{"90", "85"}; !reflect.DeepEqual(table.Rows[0].Tokens, want) {
		t.Fatalf("row 0 tokens = %v, want %v", table.Rows[0].Tokens, want)
	}
	if want := []string{"40", "Not Submitted"}; !reflect.DeepEqual(table.Rows[1].Tokens, want) {
		t.Fatalf("row 1 tokens = %v, want %v", table.Rows[1].Tokens, want)
	}
}

func TestParseNATreatedAsBlank(t *testing.T) {
	rows := [][]string{
		{"Name", "Ex 1", "Ex 2", "Ex 3"},
		{"Ana", "NA", "85", "na"},
	}

	table, err := NewParser().Parse(rows)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"", "85", ""}
	if !reflect.DeepEqual(table.Rows[0].Tokens, want) {
		t.Fatalf("tokens = %v, want %v", table.Rows[0].Tokens, want)
	}
}

func TestParseSkipsBlankRows(t *testing.T) {
	rows := [][]string{
		{"Name", "Ex 1"},
		{"", "90"},
		{"   ", "85"},
		{},
		{"Ana", "70"},
	}

	table, err := NewParser().Parse(rows)
	if err != nil {
		t.Fatal(err)
	}

	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table.Rows))
	}
	if table.Rows[0].Name != "Ana" {
		t.Fatalf("name = %q, want Ana", table.Rows[0].Name)
	}
}

func TestParseRaggedRowPadsTokens(t *testing.T) {
	rows := [][]string{
		{"Name", "Ex 1", "Ex 2", "Ex 3"},
		{"Ana", "90"},
	}

	table, err := NewParser().Parse(rows)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"90", "", ""}
	if !reflect.DeepEqual(table.Rows[0].Tokens, want) {
		t.Fatalf("tokens = %v, want %v", table.Rows[0].Tokens, want)
	}
}

func TestParseNameWhitespaceCollapsed(t *testing.T) {
	rows := [][]string{
		{"Name", "Ex 1"},
		{`"  Ana   María   Torres "`, "90"},
	}

	table, err := NewParser().Parse(rows)
	if err != nil {
		t.Fatal(err)
	}

	if table.Rows[0].Name != "Ana María Torres" {
		t.Fatalf("name = %q", table.Rows[0].Name)
	}
}

func TestParseNameTruncation(t *testing.T) {
	long := strings.Repeat("x", 300)
	rows := [][]string{
		{"Name", "Ex 1"},
		{long, "90"},
	}

	table, err := NewParser().Parse(rows)
	if err != nil {
		t.Fatal(err)
	}

	if len(table.Rows[0].Name) != 255 {
		t.Fatalf("name length = %d, want 255", len(table.Rows[0].Name))
	}
	if len(table.Warnings) == 0 {
		t.Fatal("expected a truncation warning")
	}
}

func TestParseNameTruncationMultibyte(t *testing.T) {
	long := strings.Repeat("é", 300)
	rows := [][]string{
		{"Name", "Ex 1"},
		{long, "90"},
	}

	table, err := NewParser().Parse(rows)
	if err != nil {
		t.Fatal(err)
	}

	name := table.Rows[0].Name
	if !utf8.ValidString(name) {
		t.Fatal("truncated name is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(name); got != 255 {
		t.Fatalf("name length = %d characters, want 255", got)
	}
	if len(table.Warnings) == 0 {
		t.Fatal("expected a truncation warning")
	}
}

func TestParseMultibyteNameWithinLimitKept(t *testing.T) {
	// 150 characters but 300 bytes; the limit counts characters.
	name := strings.Repeat("é", 150)
	rows := [][]string{
		{"Name", "Ex 1"},
		{name, "90"},
	}

	table, err := NewParser().Parse(rows)
	if err != nil {
		t.Fatal(err)
	}

	if table.Rows[0].Name != name {
		t.Fatalf("name altered: %q", table.Rows[0].Name)
	}
	if len(table.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", table.Warnings)
	}
}

func TestParseEmbeddedGradeRecovery(t *testing.T) {
	base := strings.Repeat("a", 95)
	leaked := base + ", 85, 90, 72"

	rows := [][]string{
		{"Name", "Ex 1"},
		{leaked, "90"},
	}

	table, err := NewParser().Parse(rows)
	if err != nil {
		t.Fatal(err)
	}

	if table.Rows[0].Name != base {
		t.Fatalf("name = %q, want first comma segment", table.Rows[0].Name)
	}
	if len(table.Warnings) == 0 {
		t.Fatal("expected a recovery warning")
	}
}

func TestParseEmptyInput(t *testing.T) {
	if _, err := NewParser().Parse(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestCSVDecoderQuotedDelimiter(t *testing.T) {
	data := "Name;Ex 1;Ex 2\n\"Torres; Ana\";90;85\n"

	rows, err := (&csvDecoder{}).Rows([]byte(data))
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "Torres; Ana" {
		t.Fatalf("quoted cell = %q", rows[1][0])
	}
}

func TestXLSXDecoderMatchesCSVPath(t *testing.T) {
	file := excelize.NewFile()
	defer file.Close()

	sheetRows := [][]interface{}{
		{"Student Name", "Ex 1", "Ex 2"},
		{"Ana Torres", 90, "Not Submitted"},
	}
	for i, row := range sheetRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := file.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := file.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	xlsxRows, err := (&xlsxDecoder{}).Rows(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	csvRows, err := (&csvDecoder{}).Rows([]byte("Student Name,Ex 1,Ex 2\nAna Torres,90,Not Submitted\n"))
	if err != nil {
		t.Fatal(err)
	}

	fromXLSX, err := NewParser().Parse(xlsxRows)
	if err != nil {
		t.Fatal(err)
	}
	fromCSV, err := NewParser().Parse(csvRows)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(fromXLSX.Exercises, fromCSV.Exercises) {
		t.Fatalf("exercises differ: %v vs %v", fromXLSX.Exercises, fromCSV.Exercises)
	}
	if !reflect.DeepEqual(fromXLSX.Rows[0].Tokens, fromCSV.Rows[0].Tokens) {
		t.Fatalf("tokens differ: %v vs %v", fromXLSX.Rows[0].Tokens, fromCSV.Rows[0].Tokens)
	}
	if fromXLSX.Rows[0].Name != "Ana Torres" {
		t.Fatalf("name = %q", fromXLSX.Rows[0].Name)
	}
}

func TestDecoderForExtension(t *testing.T) {
	if _, err := DecoderFor("grades.csv"); err != nil {
		t.Fatalf("csv: %v", err)
	}
	if _, err := DecoderFor("grades.XLSX"); err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	if _, err := DecoderFor("grades.pdf"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
