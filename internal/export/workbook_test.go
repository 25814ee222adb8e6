package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/college-portal/internal/report"
)

func TestWorkbook_SheetsAndCells(t *testing.T) {
	fees := report.Table{
		Type:   report.Fees,
		Title:  report.Fees.Title(),
		Header: report.Fees.Header(),
		Rows:   [][]string{{"S-001", "Doe, John", "Sem 3", "₹500", "paid", "-"}},
	}
	students := report.Table{
		Type:   report.Students,
		Title:  report.Students.Title(),
		Header: report.Students.Header(),
	}

	data, err := Bytes(fees, students)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Fees" || sheets[1] != "Student Directory" {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows("Fees")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("want header + 1 row, got %d", len(rows))
	}
	if rows[0][0] != "Student ID" || rows[1][1] != "Doe, John" || rows[1][3] != "₹500" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestWorkbook_Empty(t *testing.T) {
	if _, err := Workbook(); err == nil {
		t.Fatal("want error for no tables")
	}
}

func TestColumnName(t *testing.T) {
	cases := map[int]string{1: "A", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"}
	for n, want := range cases {
		if got := columnName(n); got != want {
			t.Fatalf("columnName(%d) = %q, want %q", n, got, want)
		}
	}
}
