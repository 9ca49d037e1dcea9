// Package export writes scored word pairs to CSV or Excel files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	sgns "github.com/n0madic/go-sgns"
)

// SheetName is the worksheet holding results in .xlsx output.
const SheetName = "similarity"

// WriteFile writes results to path, as an Excel workbook when the extension is
// .xlsx and as comma-delimited text otherwise.
func WriteFile(path string, results []sgns.ScoredPair) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create results directory: %w", err)
		}
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return writeXLSX(path, results)
	}
	return writeCSV(path, results)
}

func writeCSV(path string, results []sgns.ScoredPair) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := sgns.WriteSimilarities(f, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeXLSX(path string, results []sgns.ScoredPair) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"word_1", "word_2", "similarity"}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Word1, r.Word2, r.Similarity}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.SaveAs(path)
}

// ReadXLSX reads results written by WriteFile to an .xlsx path.
func ReadXLSX(path string) ([]sgns.ScoredPair, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", SheetName, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	results := make([]sgns.ScoredPair, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: expected 3 cells, got %d", i+2, len(row))
		}
		var sim float64
		if _, err := fmt.Sscan(row[2], &sim); err != nil {
			return nil, fmt.Errorf("row %d: parse similarity: %w", i+2, err)
		}
		results = append(results, sgns.ScoredPair{Word1: row[0], Word2: row[1], Similarity: sim})
	}
	return results, nil
}
