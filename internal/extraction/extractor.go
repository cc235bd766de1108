// Package extraction turns resume text into a loosely-structured JSON object
// by prompting an LLM with a fixed extraction template.
package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/resume-parser/internal/llm"
	"github.com/jonathan/resume-parser/internal/normalize"
	"github.com/jonathan/resume-parser/internal/prompts"
)

// Extractor sends resume text to a model and parses the reply.
// It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewExtractor creates an Extractor using the standard model tier.
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client, tier: llm.TierStandard}
}

// WithTier returns a copy of the extractor that uses the given tier.
func (e *Extractor) WithTier(tier llm.ModelTier) *Extractor {
	return &Extractor{client: e.client, tier: tier}
}

// Extract returns the model's JSON object for resumeText.
// The result is unvalidated; callers normalize and validate it.
func (e *Extractor) Extract(ctx context.Context, resumeText string) (*normalize.Value, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, &EmptyInputError{}
	}

	prompt, err := BuildPrompt(resumeText)
	if err != nil {
		return nil, err
	}

	responseText, err := e.client.GenerateJSON(ctx, prompt, e.tier)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to generate content from LLM",
			Cause:   err,
		}
	}

	return ParseResponse(responseText)
}

// BuildPrompt embeds resume text into the extraction template.
func BuildPrompt(resumeText string) (string, error) {
	prompt, err := prompts.Render(prompts.ResumeFile, prompts.ExtractResumeKey, map[string]string{
		"ResumeText": resumeText,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build extraction prompt: %w", err)
	}
	return prompt, nil
}

// ParseResponse strips code fences from a model reply and parses it.
// Anything other than a single JSON object is a MalformedOutputError.
func ParseResponse(responseText string) (*normalize.Value, error) {
	cleaned := llm.CleanJSONBlock(responseText)

	doc, err := normalize.Parse([]byte(cleaned))
	if err != nil {
		return nil, &MalformedOutputError{Response: responseText, Cause: err}
	}
	if doc.Kind() != normalize.KindObject {
		return nil, &MalformedOutputError{
			Response: responseText,
			Cause:    fmt.Errorf("expected a JSON object, got %s", doc.Kind()),
		}
	}
	return doc, nil
}
