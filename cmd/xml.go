// =============================================================================
// OPNsense Config Faker - XML Command
// =============================================================================
//
// This file defines the 'xml' command, which generates a complete OPNsense
// config.xml from a base document. It orchestrates the full pipeline:
// record generation, per-concern fragment rendering, and fragment injection
// into a copy of the base document.
//
// COMMAND USAGE:
//   opnfaker xml --base-config config.xml [flags]
//
// FLAGS:
//   --base-config, -b : Base OPNsense XML document (required)
//   --count, -c       : Number of VLAN records to generate (default 10)
//   --csv             : Read records from a CSV file instead of generating
//   --output-dir, -o  : Output directory (default output)
//   --options         : YAML options file (opt_counter, firewall_number, WANs)
//   --firewall-nr     : Firewall number 1-253, overrides the options file
//   --opt-counter     : Starting OPT interface counter, overrides the file
//   --seed            : Random seed for reproducible output (0 = time-based)
//   --force, -f       : Proceed without confirmation if output-dir has files
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/opnsense-config-faker/internal/assembler"
	"github.com/ginjaninja78/opnsense-config-faker/internal/config"
	"github.com/ginjaninja78/opnsense-config-faker/internal/csvio"
	"github.com/ginjaninja78/opnsense-config-faker/internal/validation"
	"github.com/ginjaninja78/opnsense-config-faker/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// xmlBaseConfig is the base OPNsense XML document path.
var xmlBaseConfig string

// xmlCount is the number of VLAN records to generate.
var xmlCount int

// xmlCSV optionally supplies pre-generated records from a CSV file.
var xmlCSV string

// xmlOutputDir is the directory for fragment files and the final document.
var xmlOutputDir string

// xmlOptionsFile is an optional YAML options file.
var xmlOptionsFile string

// xmlFirewallNr overrides the firewall number from the options file.
var xmlFirewallNr int

// xmlOptCounter overrides the starting OPT interface counter.
var xmlOptCounter int

// xmlSeed is the random seed; 0 selects a time-based seed.
var xmlSeed int64

// xmlForce proceeds without confirmation when the output dir has files.
var xmlForce bool

// =============================================================================
// XML COMMAND DEFINITION
// =============================================================================

// xmlCmd represents the 'xml' command.
var xmlCmd = &cobra.Command{
	Use:   "xml",
	Short: "Generate a complete OPNsense config.xml with faked network data",
	Long: `The xml command generates a complete OPNsense configuration from a base
config.xml document. It renders seven XML fragments (interfaces, DHCP, NAT,
firewall rules, CARP virtual IPs, VLAN tags, RADIUS users) from the
generated record set and splices them into a copy of the base document at
their fixed paths.

The intermediate part{N}_{Name}.xml fragment files are kept in the output
directory for inspection. The final document is written as
generated_<basename> next to them.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runXML()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the xml command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(xmlCmd)

	xmlCmd.Flags().StringVarP(
		&xmlBaseConfig,
		"base-config",
		"b",
		"",
		"Base OPNsense XML configuration file to use as template",
	)
	xmlCmd.MarkFlagRequired("base-config")

	xmlCmd.Flags().IntVarP(
		&xmlCount,
		"count",
		"c",
		10,
		"Number of VLAN records to generate",
	)

	xmlCmd.Flags().StringVar(
		&xmlCSV,
		"csv",
		"",
		"Read records from a CSV file instead of generating them",
	)

	xmlCmd.Flags().StringVarP(
		&xmlOutputDir,
		"output-dir",
		"o",
		"output",
		"Output directory for generated files",
	)

	xmlCmd.Flags().StringVar(
		&xmlOptionsFile,
		"options",
		"",
		"YAML options file (opt_counter, firewall_number, wan1..3)",
	)

	xmlCmd.Flags().IntVar(
		&xmlFirewallNr,
		"firewall-nr",
		0,
		"Firewall number 1-253 (affects IP addressing and CARP priority)",
	)

	xmlCmd.Flags().IntVar(
		&xmlOptCounter,
		"opt-counter",
		0,
		"Starting OPT interface counter",
	)

	xmlCmd.Flags().Int64Var(
		&xmlSeed,
		"seed",
		0,
		"Random seed for reproducible output (0 = time-based)",
	)

	xmlCmd.Flags().BoolVarP(
		&xmlForce,
		"force",
		"f",
		false,
		"Proceed without confirmation if the output directory contains files",
	)
}

// =============================================================================
// MAIN XML GENERATION FUNCTION
// =============================================================================

// runXML drives the full configuration assembly flow.
func runXML() error {
	if !utils.FileExists(xmlBaseConfig) {
		return fmt.Errorf("base configuration file not found: %s", xmlBaseConfig)
	}

	options, err := resolveOptions()
	if err != nil {
		return err
	}

	// Confirm before writing into a non-empty output directory.
	if utils.DirHasFiles(xmlOutputDir) && !xmlForce {
		prompt := fmt.Sprintf("Output directory '%s' contains files. Continue and potentially overwrite?", xmlOutputDir)
		if !utils.ConfirmOverwrite(prompt, os.Stdin) {
			fmt.Println("Operation cancelled.")
			return nil
		}
	}

	fmt.Println("Generating OPNsense configuration...")
	if verbose {
		fmt.Printf("Base config:          %s\n", xmlBaseConfig)
		fmt.Printf("Output directory:     %s\n", xmlOutputDir)
		fmt.Printf("Firewall number:      %d\n", options.FirewallNumber)
		fmt.Printf("Starting OPT counter: %d\n", options.OptCounter)
	}

	asm := assembler.New(options, newRng(xmlSeed))
	asm.Log = os.Stdout

	var outputPath string
	if xmlCSV != "" {
		outputPath, err = assembleFromCSV(asm)
	} else {
		outputPath, err = asm.Assemble(xmlBaseConfig, xmlOutputDir, xmlCount)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Successfully generated OPNsense configuration: %s\n", outputPath)
	fmt.Printf("Generated XML parts are available in: %s\n", xmlOutputDir)
	return nil
}

// assembleFromCSV reads and validates records from the --csv file, then
// runs the assembly steps on them.
func assembleFromCSV(asm *assembler.Assembler) (string, error) {
	records, err := csvio.Read(xmlCSV)
	if err != nil {
		return "", err
	}

	if errs := validation.ValidateRecords(records); len(errs) > 0 {
		return "", fmt.Errorf("CSV file %s failed validation:\n%s", xmlCSV, validation.FormatErrors(errs))
	}

	fmt.Printf("Read %d VLAN configurations from %s\n", len(records), xmlCSV)
	return asm.AssembleFromRecords(records, xmlBaseConfig, xmlOutputDir)
}

// resolveOptions merges the options file (or defaults) with flag overrides
// and validates the result before any generation work starts.
func resolveOptions() (config.Options, error) {
	options := config.Default()

	if xmlOptionsFile != "" {
		loaded, err := config.Load(xmlOptionsFile)
		if err != nil {
			return options, err
		}
		options = loaded
	}

	if xmlFirewallNr != 0 {
		options.FirewallNumber = xmlFirewallNr
	}
	if xmlOptCounter != 0 {
		options.OptCounter = xmlOptCounter
	}

	if err := config.Validate(options); err != nil {
		return options, err
	}

	return options, nil
}
