// =============================================================================
// OPNsense Config Faker - Options Configuration Module
// =============================================================================
//
// This module defines the fixed-shape options record consumed read-only by
// the fragment renderers, and loads it from an optional YAML file.
//
// EXAMPLE OPTIONS FILE (options.yaml):
//
//   opt_counter: 6
//   firewall_number: 1
//   wan1: 10.11.12.11
//   wan2: 10.11.12.12
//   wan3: 10.11.12.13
//
// Absent fields fall back to the defaults above. The firewall number shifts
// the interface IP suffix (250 + number) and selects the CARP advskew
// master/backup priority; it must stay within [1, 253] so the suffix stays
// a valid host octet.
//
// =============================================================================

package config

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// OPTIONS TYPE
// =============================================================================

// Options is the renderer configuration record. It is supplied by the
// caller once per run and never mutated during generation.
type Options struct {
	// OptCounter is the starting synthetic interface index. Generated
	// interfaces are named opt<N>, opt<N+1>, ... The default of 6 leaves
	// opt1-opt5 free for statically configured interfaces.
	OptCounter int `yaml:"opt_counter"`

	// FirewallNumber identifies this firewall in a CARP pair, 1-253.
	// It shifts the interface IP suffix (250 + FirewallNumber) and
	// selects the CARP priority (advskew 0 for 1, 100 otherwise).
	FirewallNumber int `yaml:"firewall_number"`

	// WAN1, WAN2 and WAN3 are the three upstream WAN IPv4 addresses that
	// NAT rules target, selected per record by its WAN assignment.
	WAN1 string `yaml:"wan1"`
	WAN2 string `yaml:"wan2"`
	WAN3 string `yaml:"wan3"`
}

// Default returns the options used when no file is supplied.
func Default() Options {
	return Options{
		OptCounter:     6,
		FirewallNumber: 1,
		WAN1:           "10.11.12.11",
		WAN2:           "10.11.12.12",
		WAN3:           "10.11.12.13",
	}
}

// WAN returns the WAN address for a 1-based assignment index.
//
// RETURNS:
//   - The address string and true for assignment in {1, 2, 3}.
//   - "" and false otherwise.
func (o Options) WAN(assignment int) (string, bool) {
	switch assignment {
	case 1:
		return o.WAN1, true
	case 2:
		return o.WAN2, true
	case 3:
		return o.WAN3, true
	default:
		return "", false
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads options from a YAML file, applying defaults for absent fields
// and validating the result.
//
// PARAMETERS:
//   - path: The options file path.
//
// RETURNS:
//   - The merged options.
//   - An error if the file cannot be read, parsed, or validated.
func Load(path string) (Options, error) {
	options := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return options, fmt.Errorf("failed to read options file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &options); err != nil {
		return options, fmt.Errorf("failed to parse options file %s: %w", path, err)
	}

	applyDefaults(&options)

	if err := Validate(options); err != nil {
		return options, fmt.Errorf("invalid options file %s: %w", path, err)
	}

	return options, nil
}

// applyDefaults fills zero-valued fields after unmarshalling, so a partial
// options file only overrides what it names.
func applyDefaults(options *Options) {
	defaults := Default()

	if options.OptCounter == 0 {
		options.OptCounter = defaults.OptCounter
	}
	if options.FirewallNumber == 0 {
		options.FirewallNumber = defaults.FirewallNumber
	}
	if options.WAN1 == "" {
		options.WAN1 = defaults.WAN1
	}
	if options.WAN2 == "" {
		options.WAN2 = defaults.WAN2
	}
	if options.WAN3 == "" {
		options.WAN3 = defaults.WAN3
	}
}

// Validate checks option ranges before any generation work starts.
//
// RETURNS:
//   - An error naming the first invalid field, or nil.
func Validate(options Options) error {
	if options.OptCounter < 1 {
		return fmt.Errorf("opt_counter must be at least 1, got %d", options.OptCounter)
	}

	if options.FirewallNumber < 1 || options.FirewallNumber > 253 {
		return fmt.Errorf("firewall_number must be within [1, 253], got %d", options.FirewallNumber)
	}

	for name, addr := range map[string]string{
		"wan1": options.WAN1,
		"wan2": options.WAN2,
		"wan3": options.WAN3,
	} {
		ip := net.ParseIP(addr)
		if ip == nil || ip.To4() == nil {
			return fmt.Errorf("%s is not a valid IPv4 address: %q", name, addr)
		}
	}

	return nil
}
