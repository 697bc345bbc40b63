// =============================================================================
// OPNsense Config Faker - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - generator
//   - csvio
//   - validation
//   - fragments
//
// =============================================================================

package types

// =============================================================================
// VLAN RECORD TYPE
// =============================================================================

// VlanRecord represents one generated network segment. A generation run
// produces a list of VlanRecord values that every fragment renderer consumes
// read-only and in order.
type VlanRecord struct {
	// VlanID is the VLAN tag value, 10 <= VlanID <= 4094.
	// Unique across a generation run.
	VlanID int

	// NetworkBase is the /24 network base in "A.B.C.x" form, where A.B.C
	// are the first three octets of an RFC1918 private IPv4 address. The
	// literal "x" placeholder is substituted per-consumer with a specific
	// last octet. Unique across a generation run.
	NetworkBase string

	// Description is a free-text label built from a department name and
	// the VLAN id (e.g. "Sales2041"). No uniqueness requirement.
	Description string

	// WANAssignment selects which of the three upstream WAN addresses a
	// NAT rule targets. Always in {1, 2, 3}.
	WANAssignment int
}

// =============================================================================
// VLAN CONSTANTS
// =============================================================================

// VLAN id boundaries for generated records. The 802.1Q tag space is
// [0, 4094]; generation is restricted to [10, 4094] to leave the low ids
// free for infrastructure use.
const (
	MinVlanID = 10
	MaxVlanID = 4094
)

// MaxVlanCount is the maximum practical number of unique VLAN records
// (4094 - 10 reserved ids). Beyond this count the rejection-sampling
// generator cannot guarantee uniqueness within a reasonable number of
// attempts, so callers are warned.
const MaxVlanCount = 4084
