// =============================================================================
// OPNsense Config Faker - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, which produces a CSV file of
// VLAN test records (and optionally an XLSX workbook for review).
//
// COMMAND USAGE:
//   opnfaker generate [flags]
//
// FLAGS:
//   --count, -c   : Number of VLAN records to generate (default 10)
//   --output, -o  : Output CSV path (default output/test-config.csv)
//   --xlsx        : Additionally export an XLSX workbook next to the CSV
//   --seed        : Random seed for reproducible output (0 = time-based)
//   --force, -f   : Overwrite an existing output file without confirmation
//
// =============================================================================

package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/opnsense-config-faker/internal/csvio"
	"github.com/ginjaninja78/opnsense-config-faker/internal/generator"
	"github.com/ginjaninja78/opnsense-config-faker/internal/xlsxreport"
	"github.com/ginjaninja78/opnsense-config-faker/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// generateCount is the number of VLAN records to generate.
var generateCount int

// generateOutput is the output CSV path.
var generateOutput string

// generateXLSX additionally exports an XLSX workbook.
var generateXLSX bool

// generateSeed is the random seed; 0 selects a time-based seed.
var generateSeed int64

// generateForce overwrites existing output without confirmation.
var generateForce bool

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

// generateCmd represents the 'generate' command.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a CSV file with VLAN network configuration test records",
	Long: `The generate command creates VLAN configurations with unique ids, unique
private /24 IP ranges, department-based descriptions, and WAN assignments,
and writes them to the four-column CSV record format:

  VLAN,IP Range,Beschreibung,WAN

The same record set can later be fed into 'opnfaker xml' or any external
network automation tool under test.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the generate command with the root command and sets up
// flags.
func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(
		&generateCount,
		"count",
		"c",
		10,
		"Number of VLAN records to generate",
	)

	generateCmd.Flags().StringVarP(
		&generateOutput,
		"output",
		"o",
		filepath.Join("output", "test-config.csv"),
		"Output CSV path",
	)

	generateCmd.Flags().BoolVar(
		&generateXLSX,
		"xlsx",
		false,
		"Additionally export an XLSX workbook next to the CSV",
	)

	generateCmd.Flags().Int64Var(
		&generateSeed,
		"seed",
		0,
		"Random seed for reproducible output (0 = time-based)",
	)

	generateCmd.Flags().BoolVarP(
		&generateForce,
		"force",
		"f",
		false,
		"Overwrite an existing output file without confirmation",
	)
}

// =============================================================================
// MAIN GENERATION FUNCTION
// =============================================================================

// runGenerate drives the CSV generation flow.
func runGenerate() error {
	// Handle an existing output file before doing any work.
	if utils.FileExists(generateOutput) && !generateForce {
		prompt := fmt.Sprintf("File '%s' already exists. Overwrite?", generateOutput)
		if !utils.ConfirmOverwrite(prompt, os.Stdin) {
			fmt.Println("Operation cancelled.")
			return nil
		}
	}

	if err := utils.EnsureDir(filepath.Dir(generateOutput)); err != nil {
		return err
	}

	fmt.Printf("Generating %d VLAN configurations...\n", generateCount)
	if verbose {
		fmt.Printf("Output file: %s\n", generateOutput)
	}

	gen := generator.New(newRng(generateSeed))
	records, err := gen.Generate(generateCount)
	if err != nil {
		return err
	}

	if err := csvio.Write(generateOutput, records); err != nil {
		return &generator.GenerationError{Err: err}
	}

	if generateXLSX {
		xlsxPath := strings.TrimSuffix(generateOutput, filepath.Ext(generateOutput)) + ".xlsx"
		if err := xlsxreport.Write(xlsxPath, records); err != nil {
			return err
		}
		fmt.Printf("Exported XLSX workbook: %s\n", xlsxPath)
	}

	fmt.Printf("Successfully generated %d VLAN configurations in %s\n", len(records), generateOutput)
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// newRng builds the run's random source. A zero seed selects a time-based
// seed; any other value makes the run reproducible.
func newRng(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
