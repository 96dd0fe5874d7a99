package common

import (
	"fmt"
	"slices"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ValidateJobDescriptionFlags allows the job description inline or from a
// file, not both.
func ValidateJobDescriptionFlags(text, file string) error {
	if text != "" && file != "" {
		return fmt.Errorf("use either --job-description or --job-file, not both")
	}
	return nil
}
