// =============================================================================
// OPNsense Config Faker - Main Entry Point
// =============================================================================
//
// This is the main entry point for the OPNsense Config Faker CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   opnfaker generate        - Generate a CSV file with VLAN test records
//   opnfaker xml             - Generate a complete OPNsense config.xml
//   opnfaker validate        - Validate an existing CSV record file
//   opnfaker version         - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/opnsense-config-faker/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
