// =============================================================================
// OPNsense Config Faker - CSV Record I/O Module
// =============================================================================
//
// This module reads and writes the four-column record format shared with the
// legacy tooling:
//
//   VLAN,IP Range,Beschreibung,WAN
//   1234,10.20.30.x,Sales1234,2
//
// The header row is required: it is written on every export and skipped on
// every import. Column order is significant. Values round-trip exactly
// (vlan id, network base, description, wan assignment), though not
// necessarily with identical text formatting.
//
// =============================================================================

package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ginjaninja78/opnsense-config-faker/internal/types"
)

// Header is the fixed header row of the record format. "Beschreibung" is
// kept for compatibility with the legacy German-language tooling.
var Header = []string{"VLAN", "IP Range", "Beschreibung", "WAN"}

// =============================================================================
// WRITING
// =============================================================================

// Write exports records to filePath in the four-column CSV format,
// overwriting any existing file. The header row is always written first.
//
// PARAMETERS:
//   - filePath: The destination file path.
//   - records: The record list to export, written in order.
//
// RETURNS:
//   - An error if the file cannot be created or written.
func Write(filePath string, records []types.VlanRecord) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %s: %w", filePath, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.VlanID),
			record.NetworkBase,
			record.Description,
			strconv.Itoa(record.WANAssignment),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file %s: %w", filePath, err)
	}

	return nil
}

// =============================================================================
// READING
// =============================================================================

// Read imports records from the four-column CSV format at filePath.
// The first row is treated as the header and skipped. Empty rows are
// ignored.
//
// PARAMETERS:
//   - filePath: The source file path.
//
// RETURNS:
//   - The parsed record list in file order.
//   - An error if the file cannot be read or a row is malformed.
func Read(filePath string) ([]types.VlanRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file %s: %w", filePath, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file %s is empty, expected a header row", filePath)
	}

	// Skip the header row; everything after it is data.
	records := make([]types.VlanRecord, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}

		record, err := parseRow(row)
		if err != nil {
			// Row numbers are 1-indexed and include the header.
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}

		records = append(records, record)
	}

	return records, nil
}

// parseRow converts one data row into a VlanRecord.
func parseRow(row []string) (types.VlanRecord, error) {
	if len(row) < 4 {
		return types.VlanRecord{}, fmt.Errorf("expected 4 columns, got %d", len(row))
	}

	vlanID, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil {
		return types.VlanRecord{}, fmt.Errorf("invalid VLAN id %q: %w", row[0], err)
	}

	wan, err := strconv.Atoi(strings.TrimSpace(row[3]))
	if err != nil {
		return types.VlanRecord{}, fmt.Errorf("invalid WAN assignment %q: %w", row[3], err)
	}

	return types.VlanRecord{
		VlanID:        vlanID,
		NetworkBase:   strings.TrimSpace(row[1]),
		Description:   strings.TrimSpace(row[2]),
		WANAssignment: wan,
	}, nil
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
