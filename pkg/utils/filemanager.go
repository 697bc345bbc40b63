// =============================================================================
// OPNsense Config Faker - File Manager Utility
// =============================================================================
//
// This module provides the small set of file operations shared by the CLI
// commands and the assembler:
//   - existence checks and overwrite confirmation prompts
//   - directory creation
//   - base-to-output document copying
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirHasFiles reports whether dir exists and contains at least one entry.
func DirHasFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	return len(entries) > 0
}

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// CopyFile copies src to dst, overwriting dst if it exists. Contents are
// streamed; the destination is synced before close so a later reader sees
// the full copy.
func CopyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	return destination.Sync()
}

// ConfirmOverwrite asks the user whether an existing target may be
// overwritten. Only an explicit "y"/"yes" answer confirms; everything else
// (including read failure on a closed stdin) declines.
//
// PARAMETERS:
//   - prompt: The question to display, without the " [y/N] " suffix.
//   - in: The answer source, normally os.Stdin.
//
// RETURNS:
//   - true when the user confirmed.
func ConfirmOverwrite(prompt string, in io.Reader) bool {
	fmt.Printf("%s [y/N] ", prompt)

	reader := bufio.NewReader(in)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
