// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/minesite-tools/water-balance/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateFlowCode checks that a flow code is usable as a stable identifier.
// Codes must be non-empty and free of whitespace since they are used as keys
// in the flow configuration file.
func ValidateFlowCode(code string) error {
	if code == "" {
		return fmt.Errorf("flow code must not be empty")
	}
	if strings.ContainsAny(code, " \t\n") {
		return fmt.Errorf("flow code %q must not contain whitespace", code)
	}
	return nil
}
