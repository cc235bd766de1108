// Package observability provides logging setup and formatted output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-parser/internal/schemas"
	"github.com/jonathan/resume-parser/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads s to exactly width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		runes := []rune(s)
		return string(runes[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-n)
}

// PrintCandidateProfile outputs a human-readable summary of an extracted profile.
func (p *Printer) PrintCandidateProfile(profile *types.CandidateProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Name:     %s\n", profile.FullName()))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", profile.Email))
	sb.WriteString(fmt.Sprintf("Phone:    %s\n", profile.PhoneNo))
	sb.WriteString(fmt.Sprintf("Position: %s\n", profile.Position))
	sb.WriteString(fmt.Sprintf("City:     %s\n", profile.City))
	sb.WriteString(fmt.Sprintf("Source:   %s\n", profile.Resume))
	sb.WriteString("\n")

	if len(profile.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills: %s\n\n", strings.Join(profile.Skills, ", ")))
	}

	if len(profile.Companies) > 0 {
		sb.WriteString("Experience:\n")
		writeList(&sb, len(profile.Companies), func(i int) string {
			c := profile.Companies[i]
			line := c.CompanyName
			if c.Position != nil && *c.Position != "" {
				line += " - " + *c.Position
			}
			return line + " (" + dateRange(c) + ")"
		})
		sb.WriteString("\n")
	}

	if len(profile.Projects) > 0 {
		sb.WriteString("Projects:\n")
		writeList(&sb, len(profile.Projects), func(i int) string {
			proj := profile.Projects[i]
			if len(proj.Technologies) == 0 {
				return proj.Title
			}
			return fmt.Sprintf("%s [%s]", proj.Title, strings.Join(proj.Technologies, ", "))
		})
	}

	p.printBox("EXTRACTED CANDIDATE PROFILE", sb.String())
}

// PrintValidationErrors outputs every schema violation.
func (p *Printer) PrintValidationErrors(source string, err *schemas.ValidationError) {
	if err == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d violation(s) in %s:\n", len(err.Errors), source))
	for _, fe := range err.Errors {
		sb.WriteString(fmt.Sprintf("  • %s: %s\n", fe.Field, fe.Message))
	}

	p.printBox("SCHEMA VALIDATION FAILED", sb.String())
}

// FileResult is the outcome of extracting one local file.
type FileResult struct {
	Path    string
	Output  string
	Kind    string
	Message string
}

// PrintRunSummary outputs a table of per-file results for a batch extraction.
func (p *Printer) PrintRunSummary(results []FileResult) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	failed := 0
	for _, r := range results {
		if r.Kind == "" {
			sb.WriteString(fmt.Sprintf("✓ %s -> %s\n", r.Path, r.Output))
			continue
		}
		failed++
		sb.WriteString(fmt.Sprintf("✗ %s: %s (%s)\n", r.Path, r.Message, r.Kind))
	}
	sb.WriteString(fmt.Sprintf("\n%d succeeded, %d failed\n", len(results)-failed, failed))

	p.printBox("EXTRACTION SUMMARY", sb.String())
}

func writeList(sb *strings.Builder, n int, item func(i int) string) {
	for i := 0; i < min(n, maxItemsToShow); i++ {
		sb.WriteString("  • " + item(i) + "\n")
	}
	if n > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", n-maxItemsToShow))
	}
}

func dateRange(c types.CompanyExperience) string {
	from := c.FromDate
	if from == "" {
		from = "?"
	}
	switch {
	case c.CurrentPosition:
		return from + " - present"
	case c.ToDate != nil && *c.ToDate != "":
		return from + " - " + *c.ToDate
	default:
		return from
	}
}
