// Package xlsx exports the derived dashboard tables as an Excel workbook.
package xlsx

import (
	"fmt"
	"io"
	"math"

	"github.com/couchcryptid/county-home-values/internal/domain"
	"github.com/xuri/excelize/v2"
)

const growthSheet = "Growth"

var growthHeaders = []string{"RegionID", "County", "State", "Window", "Annualized % Growth"}

// Write writes snap as a workbook with a Growth sheet and one Rankings sheet
// per ranking date. Undefined growth values are left blank.
func Write(w io.Writer, snap *domain.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", growthSheet); err != nil {
		return err
	}
	if err := writeGrowth(f, snap.Growth); err != nil {
		return fmt.Errorf("growth sheet: %w", err)
	}
	for _, r := range snap.Rankings {
		if err := writeRanking(f, r); err != nil {
			return fmt.Errorf("ranking sheet %s: %w", r.Date, err)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// RankingSheet names the sheet holding the ranking for date.
func RankingSheet(date string) string {
	return "Rankings " + date
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, 18); err != nil {
			return err
		}
	}
	return nil
}

func writeGrowth(f *excelize.File, records []domain.GrowthRecord) error {
	if err := writeHeader(f, growthSheet, growthHeaders); err != nil {
		return err
	}
	for i, g := range records {
		row := i + 2
		values := []any{g.RegionID, g.County, g.State, g.Window.Label()}
		if !math.IsNaN(g.Percent) {
			values = append(values, g.Percent)
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(growthSheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func writeRanking(f *excelize.File, r domain.Ranking) error {
	sheet := RankingSheet(r.Date)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, []string{"State", "Count"}); err != nil {
		return err
	}
	for i, c := range r.Counts {
		row := i + 2
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), c.State); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), c.Count); err != nil {
			return err
		}
	}
	return nil
}
