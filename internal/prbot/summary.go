package prbot

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/askdocs/server/internal/chunker"
	"codeberg.org/askdocs/server/internal/llm"
)

const segmentPrompt = `Summarize the following part of a pull request diff in a few bullet points. Focus on behavior changes, not formatting.

%s`

const finalPrompt = `Below are summaries of the parts of one pull request. Write a concise markdown summary of the whole pull request: one short paragraph followed by the most important changes as bullet points.

%s`

// splits a diff into file sections packed into bounded segments
func segmentDiff(diff string, maxChars int) ([]string, error) {
	files, err := chunker.Split(chunker.KindDiff, diff, chunker.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to split diff: %w", err)
	}

	return chunker.Pack(files, maxChars), nil
}

// summarizes a diff segment by segment, then as a whole. a diff over the
// token budget gets a notice instead of a summary.
func (b *Bot) summarize(ctx context.Context, diff string) (string, error) {
	segments, err := segmentDiff(diff, b.opts.SegmentChars)
	if err != nil {
		return "", err
	}

	if len(segments) == 0 {
		return "The PR has no changes to summarize.", nil
	}

	tokens := 0
	for _, s := range segments {
		tokens += chunker.EstimateTokens(s)
	}

	if tokens > b.opts.MaxTokens {
		return fmt.Sprintf("The PR is too large to summarize, tokens: %d, max tokens: %d", tokens, b.opts.MaxTokens), nil
	}

	partials := make([]string, 0, len(segments))
	for i, seg := range segments {
		resp, err := b.generator.GenerateText(ctx, llm.UserPrompt(fmt.Sprintf(segmentPrompt, seg)))
		if err != nil {
			return "", fmt.Errorf("failed to summarize segment %d: %w", i, err)
		}
		partials = append(partials, strings.TrimSpace(resp.Text))
	}

	if len(partials) == 1 {
		return partials[0], nil
	}

	resp, err := b.generator.GenerateText(ctx, llm.UserPrompt(fmt.Sprintf(finalPrompt, strings.Join(partials, "\n\n"))))
	if err != nil {
		return "", fmt.Errorf("failed to write final summary: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}
