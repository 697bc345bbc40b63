// =============================================================================
// OPNsense Config Faker - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks an existing CSV
// record file against the record invariants (id/assignment ranges, network
// base shape, run-wide uniqueness) without generating anything.
//
// COMMAND USAGE:
//   opnfaker validate --file vlans.csv
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/opnsense-config-faker/internal/csvio"
	"github.com/ginjaninja78/opnsense-config-faker/internal/validation"
)

// validateFile is the CSV file to validate.
var validateFile string

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an existing CSV record file",
	Long: `The validate command reads a four-column CSV record file and reports every
record that violates the generation invariants: VLAN ids outside [10, 4094],
WAN assignments outside [1, 3], malformed A.B.C.x network bases, and
duplicate VLAN ids or networks. Useful for hand-edited record files before
feeding them into 'opnfaker xml --csv'.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

// init registers the validate command with the root command.
func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(
		&validateFile,
		"file",
		"",
		"Path to the CSV record file to validate",
	)
	validateCmd.MarkFlagRequired("file")
}

// runValidate reads the record file and prints a validation report.
func runValidate() error {
	records, err := csvio.Read(validateFile)
	if err != nil {
		return err
	}

	errs := validation.ValidateRecords(records)
	if len(errs) > 0 {
		fmt.Printf("Validation failed for %s (%d record(s), %d finding(s)):\n", validateFile, len(records), len(errs))
		fmt.Print(validation.FormatErrors(errs))
		return fmt.Errorf("%d validation error(s)", len(errs))
	}

	fmt.Printf("%s: %d record(s), no validation errors\n", validateFile, len(records))
	return nil
}
