// =============================================================================
// OPNsense Config Faker - Record Validation Module
// =============================================================================
//
// This module validates record lists, typically ones read back from a CSV
// file that may have been hand-edited. It checks, per record:
//   - VLAN id within [10, 4094]
//   - WAN assignment within {1, 2, 3}
//   - network base matching the "A.B.C.x" placeholder shape
// and, across the whole list:
//   - no duplicate VLAN ids
//   - no duplicate network bases
//
// Every finding is reported as a positioned ValidationError so callers can
// print a complete report instead of stopping at the first problem.
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/opnsense-config-faker/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPE
// =============================================================================

// ValidationError describes a single validation finding.
type ValidationError struct {
	// Record is the 1-indexed position of the record in the list.
	Record int

	// Field is the record field the finding applies to.
	Field string

	// Message describes what is wrong with the value.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d, field %s: %s", e.Record, e.Field, e.Message)
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// networkBasePattern matches the "A.B.C.x" placeholder form of a /24
// network base. Octet ranges are checked separately.
var networkBasePattern = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.x$`)

// ValidateRecords checks every record and the cross-record uniqueness
// invariants.
//
// PARAMETERS:
//   - records: The record list to validate.
//
// RETURNS:
//   - All findings, or an empty slice when the list is valid.
func ValidateRecords(records []types.VlanRecord) []*ValidationError {
	var errors []*ValidationError

	seenVlans := make(map[int]int, len(records))
	seenNetworks := make(map[string]int, len(records))

	for i, record := range records {
		position := i + 1

		if record.VlanID < types.MinVlanID || record.VlanID > types.MaxVlanID {
			errors = append(errors, &ValidationError{
				Record:  position,
				Field:   "VLAN",
				Message: fmt.Sprintf("id %d outside valid range [%d, %d]", record.VlanID, types.MinVlanID, types.MaxVlanID),
			})
		}

		if record.WANAssignment < 1 || record.WANAssignment > 3 {
			errors = append(errors, &ValidationError{
				Record:  position,
				Field:   "WAN",
				Message: fmt.Sprintf("assignment %d outside valid range [1, 3]", record.WANAssignment),
			})
		}

		if err := validateNetworkBase(record.NetworkBase); err != "" {
			errors = append(errors, &ValidationError{
				Record:  position,
				Field:   "IP Range",
				Message: err,
			})
		}

		if first, seen := seenVlans[record.VlanID]; seen {
			errors = append(errors, &ValidationError{
				Record:  position,
				Field:   "VLAN",
				Message: fmt.Sprintf("duplicate id %d, first used by record %d", record.VlanID, first),
			})
		} else {
			seenVlans[record.VlanID] = position
		}

		if first, seen := seenNetworks[record.NetworkBase]; seen {
			errors = append(errors, &ValidationError{
				Record:  position,
				Field:   "IP Range",
				Message: fmt.Sprintf("duplicate network %s, first used by record %d", record.NetworkBase, first),
			})
		} else {
			seenNetworks[record.NetworkBase] = position
		}
	}

	return errors
}

// validateNetworkBase checks the "A.B.C.x" shape and octet ranges.
// Returns an empty string when valid, otherwise a message.
func validateNetworkBase(networkBase string) string {
	match := networkBasePattern.FindStringSubmatch(networkBase)
	if match == nil {
		return fmt.Sprintf("value %q does not match the A.B.C.x network form", networkBase)
	}

	for _, octet := range match[1:] {
		// Leading zeros are tolerated; only the numeric range matters.
		var value int
		fmt.Sscanf(octet, "%d", &value)
		if value > 255 {
			return fmt.Sprintf("octet %s in %q exceeds 255", octet, networkBase)
		}
	}

	return ""
}

// FormatErrors renders findings as a human-readable multi-line report.
//
// PARAMETERS:
//   - errors: The findings to format.
//
// RETURNS:
//   - One line per finding, or "no validation errors" for an empty slice.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "no validation errors"
	}

	var builder strings.Builder
	for _, err := range errors {
		builder.WriteString("  - ")
		builder.WriteString(err.Error())
		builder.WriteString("\n")
	}
	return builder.String()
}
