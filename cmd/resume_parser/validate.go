package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-parser/internal/normalize"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/resume"
	"github.com/jonathan/resume-parser/internal/schemas"
)

var (
	validateInput     string
	validateNormalize bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a profile JSON file against the candidate profile schema",
	Long: `Validate a JSON document against the candidate profile schema and list every violation.
With --normalize the document is first passed through the same normalization the
extraction pipeline applies to model output.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return validateFile(validateInput, validateNormalize, cmd.OutOrStdout())
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to profile JSON file (required)")
	validateCmd.Flags().BoolVar(&validateNormalize, "normalize", false, "Normalize the document before validating")
	_ = validateCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(validateCmd)
}

func validateFile(path string, normalizeFirst bool, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := normalize.Parse(data)
	if err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	if normalizeFirst {
		doc = normalize.Normalize(doc)
	}

	profile, err := resume.ValidateDocument(doc)
	if err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			observability.NewPrinter(out).PrintValidationErrors(path, validationErr)
			return fmt.Errorf("validation failed")
		}
		return err
	}

	fmt.Fprintf(out, "Validation passed: %s (%s)\n", path, profile.FullName()) //nolint:errcheck
	return nil
}
