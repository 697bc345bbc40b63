// =============================================================================
// OPNsense Config Faker - Record Generator Module
// =============================================================================
//
// This module produces the list of VlanRecord values that drives every
// downstream renderer. It guarantees two uniqueness invariants across a
// single run:
//   - no two records share a VLAN id
//   - no two records share a /24 network base
//
// ALGORITHM:
//   Sampling-with-rejection: draw a candidate uniformly, retry while it is
//   already in the used-set, then commit. This is correct but the expected
//   retry count grows as the used-set approaches the domain size, which is
//   why requests beyond MaxVlanCount emit a warning instead of a guarantee.
//
// REPRODUCIBILITY:
//   All randomness flows through an explicitly passed *rand.Rand so that
//   runs are reproducible from a seed. There is no process-global random
//   state in this package.
//
// =============================================================================

package generator

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/ginjaninja78/opnsense-config-faker/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrInvalidCount is returned when the requested record count is below 1.
// It is raised before any record is generated.
var ErrInvalidCount = errors.New("number of records must be at least 1")

// ErrCountExceedsIDSpace is returned when the requested record count is
// larger than the number of usable VLAN ids. Beyond that point the
// uniqueness invariant is unsatisfiable, so generation refuses to start
// instead of sampling an exhausted id space forever.
var ErrCountExceedsIDSpace = errors.New("requested count exceeds the number of unique VLAN ids")

// GenerationError wraps a fault while producing or persisting a record
// set, so callers can treat the whole generation flow as one failure
// class.
type GenerationError struct {
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate VLAN configurations: %v", e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// DEPARTMENT NAMES
// =============================================================================

// Departments is the fixed label set used to build record descriptions.
// Descriptions are the department name concatenated with the VLAN id;
// repeats across records are allowed.
var Departments = []string{
	"Sales",
	"IT",
	"HR",
	"Finance",
	"Marketing",
	"Operations",
	"Engineering",
	"Support",
	"Admin",
	"Guest",
	"Lab",
	"Test",
}

// =============================================================================
// GENERATOR
// =============================================================================

// Generator produces VlanRecord values under the run-wide uniqueness
// invariants. A Generator is single-use per run in the sense that its
// used-sets reset on every Generate call.
type Generator struct {
	// rng is the seedable random source all draws flow through.
	rng *rand.Rand

	// WarnOutput receives the non-fatal over-limit warning.
	// Defaults to os.Stderr; tests inject a buffer.
	WarnOutput io.Writer
}

// New creates a Generator backed by the given random source.
//
// PARAMETERS:
//   - rng: The random source. If nil, a time-seeded source is created.
//
// RETURNS:
//   - A ready-to-use Generator writing warnings to stderr.
func New(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		rng:        rng,
		WarnOutput: os.Stderr,
	}
}

// Generate produces exactly count records in generation order.
//
// PARAMETERS:
//   - count: The number of records to generate. Must be at least 1.
//
// RETURNS:
//   - The ordered record list, length exactly count.
//   - ErrInvalidCount for count < 1, ErrCountExceedsIDSpace when count is
//     larger than the [MinVlanID, MaxVlanID] id space.
//
// Counts above types.MaxVlanCount that still fit the id space proceed but
// emit a warning to WarnOutput, because rejection sampling slows sharply
// as the used-set approaches the id space size.
func (g *Generator) Generate(count int) ([]types.VlanRecord, error) {
	if count < 1 {
		return nil, ErrInvalidCount
	}

	idSpace := types.MaxVlanID - types.MinVlanID + 1
	if count > idSpace {
		return nil, fmt.Errorf("%w: %d requested, %d exist in [%d, %d]",
			ErrCountExceedsIDSpace, count, idSpace, types.MinVlanID, types.MaxVlanID)
	}

	if count > types.MaxVlanCount {
		fmt.Fprintf(g.WarnOutput,
			"Warning: requested count (%d) exceeds practical VLAN limit (%d), generation will slow as the id space fills\n",
			count, types.MaxVlanCount)
	}

	records := make([]types.VlanRecord, 0, count)
	usedVlans := make(map[int]bool, count)
	usedNetworks := make(map[string]bool, count)

	for i := 0; i < count; i++ {
		// Draw a unique VLAN id.
		var vlanID int
		for {
			vlanID = types.MinVlanID + g.rng.Intn(types.MaxVlanID-types.MinVlanID+1)
			if !usedVlans[vlanID] {
				usedVlans[vlanID] = true
				break
			}
		}

		// Draw a unique private /24 network base.
		var networkBase string
		for {
			networkBase = g.privateNetworkBase()
			if !usedNetworks[networkBase] {
				usedNetworks[networkBase] = true
				break
			}
		}

		department := Departments[g.rng.Intn(len(Departments))]

		records = append(records, types.VlanRecord{
			VlanID:        vlanID,
			NetworkBase:   networkBase,
			Description:   fmt.Sprintf("%s%d", department, vlanID),
			WANAssignment: 1 + g.rng.Intn(3),
		})
	}

	return records, nil
}

// privateNetworkBase draws a random RFC1918 address and reduces it to its
// first three octets, returning the "A.B.C.x" placeholder form. The three
// private ranges (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16) are chosen
// with equal probability.
func (g *Generator) privateNetworkBase() string {
	switch g.rng.Intn(3) {
	case 0:
		return fmt.Sprintf("10.%d.%d.x", g.rng.Intn(256), g.rng.Intn(256))
	case 1:
		return fmt.Sprintf("172.%d.%d.x", 16+g.rng.Intn(16), g.rng.Intn(256))
	default:
		return fmt.Sprintf("192.168.%d.x", g.rng.Intn(256))
	}
}

// RandomPassword returns an alphanumeric password of the given length drawn
// from the supplied random source. Used by the CARP renderer for virtual-IP
// passwords.
func RandomPassword(rng *rand.Rand, length int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	password := make([]byte, length)
	for i := range password {
		password[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(password)
}
