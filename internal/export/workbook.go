// Package export собирает XLSX-версии отчётов.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/college-portal/internal/report"
)

const defaultSheet = "Sheet1"

// Workbook: по листу на таблицу, в порядке аргументов.
func Workbook(tables ...report.Table) (*excelize.File, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("workbook: no tables")
	}
	f := excelize.NewFile()
	for i, t := range tables {
		name := sheetName(t)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}

		if err := f.SetSheetRow(name, "A1", &t.Header); err != nil {
			return nil, fmt.Errorf("header %s: %w", name, err)
		}
		for r, row := range t.Rows {
			cell := fmt.Sprintf("A%d", r+2)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return nil, fmt.Errorf("row %s: %w", cell, err)
			}
		}
		if err := applyFormatting(f, name); err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
	}
	return f, nil
}

// WriteTo пишет книгу из таблиц в w.
func WriteTo(w io.Writer, tables ...report.Table) error {
	f, err := Workbook(tables...)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

func Bytes(tables ...report.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, tables...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sheetName: не длиннее 31 символа (ограничение Excel).
func sheetName(t report.Table) string {
	name := t.Title
	if name == "" {
		name = string(t.Type)
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
