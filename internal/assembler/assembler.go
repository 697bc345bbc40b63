// =============================================================================
// OPNsense Config Faker - Full Configuration Assembler
// =============================================================================
//
// This module orchestrates the full config.xml generation sequence:
//
//   1. Generate the record list (internal/generator)
//   2. Render every fragment in the fixed pipeline order to
//      part{order}_{name}.xml files in the output directory
//   3. Copy the base document to generated_{basename} in the output
//      directory
//   4. Splice each fragment into the copy, in the same fixed order
//   5. Return the output document's path
//
// FAILURE MODEL:
//   There is no rollback. If splicing fails partway through, the output
//   document is left with the earlier fragments injected and the later
//   ones missing. The intermediate fragment files are always left on disk
//   for inspection.
//
// =============================================================================

package assembler

import (
	"fmt"
	"io"
	"math/rand"
	"path/filepath"

	"github.com/ginjaninja78/opnsense-config-faker/internal/config"
	"github.com/ginjaninja78/opnsense-config-faker/internal/fragments"
	"github.com/ginjaninja78/opnsense-config-faker/internal/generator"
	"github.com/ginjaninja78/opnsense-config-faker/internal/types"
	"github.com/ginjaninja78/opnsense-config-faker/internal/xmlsplice"
	"github.com/ginjaninja78/opnsense-config-faker/pkg/utils"
)

// Assembler drives one full configuration run.
type Assembler struct {
	// Options is the renderer configuration, read-only during the run.
	Options config.Options

	// Rng is the seedable random source threaded through record
	// generation and CARP password generation.
	Rng *rand.Rand

	// Log receives per-step progress lines. Defaults to io.Discard when
	// nil so library callers stay quiet.
	Log io.Writer
}

// New creates an Assembler with the given options and random source.
func New(options config.Options, rng *rand.Rand) *Assembler {
	return &Assembler{
		Options: options,
		Rng:     rng,
		Log:     io.Discard,
	}
}

// Assemble runs the full sequence against baseConfig and returns the path
// of the generated document inside outputDir.
//
// PARAMETERS:
//   - baseConfig: The base OPNsense XML document to use as template.
//   - outputDir: The directory for fragment files and the final document.
//   - count: The number of VLAN records to generate.
//
// RETURNS:
//   - The generated document's path.
//   - The first error of the sequence; see the failure model above for
//     what state a mid-sequence splice failure leaves behind.
func (a *Assembler) Assemble(baseConfig, outputDir string, count int) (string, error) {
	records, err := a.generateRecords(count)
	if err != nil {
		return "", err
	}

	return a.AssembleFromRecords(records, baseConfig, outputDir)
}

// AssembleFromRecords runs steps 2-5 for an already generated (or CSV
// imported) record list.
func (a *Assembler) AssembleFromRecords(records []types.VlanRecord, baseConfig, outputDir string) (string, error) {
	if err := utils.EnsureDir(outputDir); err != nil {
		return "", err
	}

	modules := fragments.Modules()

	// Render all fragments before touching the base document, so a
	// rendering failure never produces a half-assembled output file.
	for _, module := range modules {
		fragmentPath := filepath.Join(outputDir, module.FileName())
		fmt.Fprintf(a.log(), "Generating %s...\n", module.FileName())

		if err := fragments.RenderToFile(module, fragmentPath, records, a.Options, a.Rng); err != nil {
			return "", err
		}
	}

	outputPath := filepath.Join(outputDir, "generated_"+filepath.Base(baseConfig))
	if err := utils.CopyFile(baseConfig, outputPath); err != nil {
		return "", fmt.Errorf("failed to copy base configuration: %w", err)
	}

	for _, module := range modules {
		fragmentPath := filepath.Join(outputDir, module.FileName())
		fmt.Fprintf(a.log(), "Injecting %s into configuration...\n", module.FileName())

		if err := xmlsplice.InjectFragments(outputPath, module.TagPath, []string{fragmentPath}); err != nil {
			return "", err
		}
	}

	return outputPath, nil
}

// generateRecords wraps record generation with progress output.
func (a *Assembler) generateRecords(count int) ([]types.VlanRecord, error) {
	fmt.Fprintf(a.log(), "Generating %d VLAN configurations...\n", count)

	gen := generator.New(a.Rng)
	return gen.Generate(count)
}

func (a *Assembler) log() io.Writer {
	if a.Log == nil {
		return io.Discard
	}
	return a.Log
}
