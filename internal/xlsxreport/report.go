// =============================================================================
// OPNsense Config Faker - XLSX Report Module
// =============================================================================
//
// This module exports a generated record list as an XLSX workbook for
// spreadsheet review: a "Records" sheet mirroring the four-column CSV
// format, and a "Summary" sheet with run-level counts.
//
// =============================================================================

package xlsxreport

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/opnsense-config-faker/internal/csvio"
	"github.com/ginjaninja78/opnsense-config-faker/internal/types"
)

// recordSheet and summarySheet are the fixed sheet names of the workbook.
const (
	recordSheet  = "Records"
	summarySheet = "Summary"
)

// Write exports records as an XLSX workbook at filePath, overwriting any
// existing file.
//
// PARAMETERS:
//   - filePath: The destination workbook path.
//   - records: The record list to export, written in order.
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func Write(filePath string, records []types.VlanRecord) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	if err := writeRecordSheet(workbook, records); err != nil {
		return fmt.Errorf("failed to build record sheet: %w", err)
	}

	if err := writeSummarySheet(workbook, records); err != nil {
		return fmt.Errorf("failed to build summary sheet: %w", err)
	}

	// Replace the default sheet with the record sheet.
	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := workbook.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", filePath, err)
	}

	return nil
}

// writeRecordSheet fills the "Records" sheet with the CSV header row and
// one row per record.
func writeRecordSheet(workbook *excelize.File, records []types.VlanRecord) error {
	index, err := workbook.NewSheet(recordSheet)
	if err != nil {
		return err
	}
	workbook.SetActiveSheet(index)

	for col, header := range csvio.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := workbook.SetCellValue(recordSheet, cell, header); err != nil {
			return err
		}
	}

	for row, record := range records {
		values := []interface{}{
			record.VlanID,
			record.NetworkBase,
			record.Description,
			record.WANAssignment,
		}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := workbook.SetCellValue(recordSheet, cell, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeSummarySheet fills the "Summary" sheet with run-level counts.
func writeSummarySheet(workbook *excelize.File, records []types.VlanRecord) error {
	if _, err := workbook.NewSheet(summarySheet); err != nil {
		return err
	}

	wanCounts := map[int]int{}
	for _, record := range records {
		wanCounts[record.WANAssignment]++
	}

	rows := [][]interface{}{
		{"Total records", len(records)},
		{"WAN 1 assignments", wanCounts[1]},
		{"WAN 2 assignments", wanCounts[2]},
		{"WAN 3 assignments", wanCounts[3]},
	}

	for rowIndex, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIndex+1)
			if err != nil {
				return err
			}
			if err := workbook.SetCellValue(summarySheet, cell, value); err != nil {
				return err
			}
		}
	}

	return nil
}
