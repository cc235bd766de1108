package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-parser/internal/ingestion"
	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/resume"
	"github.com/jonathan/resume-parser/internal/types"
)

var (
	extractConfigPath  string
	extractOutDir      string
	extractConcurrency int
	extractVerbose     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <resume.pdf|resume.txt>...",
	Short: "Extract candidate profiles from local resume files",
	Long: `Run the extraction pipeline on local files and write one <name>.json per input.
PDF files go through text extraction; .txt files are sent to the model as-is after cleaning.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractConfigPath, "config", "c", "", "Path to JSON config file")
	extractCmd.Flags().StringVarP(&extractOutDir, "out", "o", ".", "Directory to write profile JSON files to")
	extractCmd.Flags().IntVar(&extractConcurrency, "concurrency", 2, "Maximum number of files processed at once")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print each extracted profile")
	rootCmd.AddCommand(extractCmd)
}

// fileExtractor is the subset of resume.Service the extract command uses.
type fileExtractor interface {
	Extract(ctx context.Context, upload resume.Upload) (*types.CandidateProfile, error)
	ExtractText(ctx context.Context, text, filename string) (*types.CandidateProfile, error)
}

func runExtract(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), extractConfigPath, "cli")
	if err != nil {
		return err
	}
	defer a.Close()

	if err := os.MkdirAll(extractOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var printer *observability.Printer
	if extractVerbose {
		printer = observability.NewPrinter(os.Stdout)
	}

	results := extractFiles(cmd.Context(), a.service, args, extractOutDir, extractConcurrency, printer)
	observability.NewPrinter(os.Stdout).PrintRunSummary(results)

	for _, r := range results {
		if r.Kind != "" {
			return fmt.Errorf("one or more files failed")
		}
	}
	return nil
}

// extractFiles processes paths with at most concurrency files in flight.
// Results keep the order of paths. printer may be nil.
func extractFiles(ctx context.Context, ex fileExtractor, paths []string, outDir string, concurrency int, printer *observability.Printer) []observability.FileResult {
	results := make([]observability.FileResult, len(paths))
	outputs := outputPaths(paths, outDir)

	var g errgroup.Group
	g.SetLimit(max(concurrency, 1))

	for i, path := range paths {
		g.Go(func() error {
			results[i] = extractFile(ctx, ex, path, outputs[i])
			return nil
		})
	}
	_ = g.Wait()

	if printer != nil {
		for _, r := range results {
			if r.Kind != "" {
				continue
			}
			if profile, err := readProfile(r.Output); err == nil {
				printer.PrintCandidateProfile(profile)
			}
		}
	}
	return results
}

// outputPaths maps each input to <outDir>/<stem>.json. Inputs sharing a stem,
// such as a/cv.pdf and b/cv.pdf, get -2, -3, ... suffixes in argument order.
func outputPaths(paths []string, outDir string) []string {
	out := make([]string, len(paths))
	taken := make(map[string]bool, len(paths))
	for i, path := range paths {
		name := filepath.Base(path)
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		candidate := stem + ".json"
		for n := 2; taken[strings.ToLower(candidate)]; n++ {
			candidate = fmt.Sprintf("%s-%d.json", stem, n)
		}
		taken[strings.ToLower(candidate)] = true
		out[i] = filepath.Join(outDir, candidate)
	}
	return out
}

func extractFile(ctx context.Context, ex fileExtractor, path, output string) observability.FileResult {
	result := observability.FileResult{Path: path}

	profile, err := extractOne(ctx, ex, path, filepath.Base(path))
	if err == nil {
		result.Output = output
		err = writeProfile(result.Output, profile)
	}
	if err != nil {
		result.Kind = string(resume.KindOf(err))
		result.Message = resume.PublicMessage(err)
		if result.Kind == string(resume.KindInternalFailure) {
			result.Message = err.Error()
		}
	}
	return result
}

func extractOne(ctx context.Context, ex fileExtractor, path, name string) (*types.CandidateProfile, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ex.ExtractText(ctx, ingestion.CleanText(string(data)), name)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	contentType := resume.PDFContentType
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		contentType = "application/octet-stream"
	}
	return ex.Extract(ctx, resume.Upload{Filename: name, ContentType: contentType, Body: f})
}

func writeProfile(path string, profile *types.CandidateProfile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readProfile(path string) (*types.CandidateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var profile types.CandidateProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
