// Package cli provides shared utilities for the gherkin CLI tools.
package cli

// Standard exit codes for the gherkin CLI tools.
//
// These follow Unix conventions:
//   - 0: Success
//   - 1: General error (I/O errors, bad arguments, etc.)
//   - 2: The tool ran but found nothing (no matches, no usages)
const (
	// ExitOK indicates successful execution with no issues.
	ExitOK = 0

	// ExitError indicates a fatal error occurred (I/O error, bad flag, etc.).
	ExitError = 1

	// ExitWarning indicates the tool completed but the query came up
	// empty, for example a step that resolves to no keyword.
	ExitWarning = 2
)
