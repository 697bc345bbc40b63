// =============================================================================
// OPNsense Config Faker - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (opnfaker)
//   ├── generateCmd (opnfaker generate)
//   ├── xmlCmd      (opnfaker xml)
//   ├── validateCmd (opnfaker validate)
//   └── versionCmd  (opnfaker version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// verbose enables verbose output when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "opnfaker",
	Short: "OPNsense Config Faker - Generate realistic network configuration test data",
	Long: `OPNsense Config Faker is a CLI tool that generates realistic network
configuration test data (VLANs, private IP ranges, department descriptions,
WAN assignments) and renders it into OPNsense's config.xml format.

Key Features:
  - Unique VLAN id and /24 network generation with reproducible seeds
  - CSV export/import of the generated record set
  - Seven per-concern XML fragments (interfaces, DHCP, NAT, firewall rules,
    CARP virtual IPs, VLAN tags, RADIUS users)
  - Injection of the fragments into a base config.xml at fixed paths

Example Usage:
  opnfaker generate --count 25 --output vlans.csv
  opnfaker xml --base-config config.xml --count 50 --output-dir out
  opnfaker validate --file vlans.csv`,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --verbose flag: Enables verbose/debug output.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
