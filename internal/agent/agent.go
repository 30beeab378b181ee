package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/askdocs/server/internal/cache"
	"codeberg.org/askdocs/server/internal/llm"
	"codeberg.org/askdocs/server/internal/logger"
	"codeberg.org/askdocs/server/internal/storage"
	"github.com/google/uuid"
)

func New(ret Retriever, generator llm.TextGenerator, opts ...Option) *Agent {
	a := &Agent{
		retriever:    ret,
		generator:    generator,
		template:     DefaultPromptTemplate,
		budget:       DefaultPromptBudget,
		auditTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// retrieves, composes, completes. returns the canned fallback when nothing
// was retrieved. audit writes happen in the background and never fail the
// answer.
func (a *Agent) Answer(ctx context.Context, query string) (*Answer, error) {
	query = strings.TrimSpace(query)

	if cached := a.cached(ctx, query); cached != nil {
		return cached, nil
	}

	results, err := a.retriever.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sections: %w", err)
	}

	sections, distances := splitResults(results)

	if len(sections) == 0 {
		answer := &Answer{Text: FallbackAnswer, Fallback: true}
		a.record(ctx, query, "", answer)
		return answer, nil
	}

	prompt := ComposePrompt(a.template, query, sections, a.budget)

	resp, err := a.generator.GenerateText(ctx, llm.UserPrompt(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	answer := &Answer{
		Text:      resp.Text,
		Sections:  sections,
		Distances: distances,
	}

	a.record(ctx, query, prompt, answer)
	a.store(ctx, query, answer)

	return answer, nil
}

// returns the retrieved section texts without calling the model
func (a *Agent) Search(ctx context.Context, query string) ([]string, error) {
	results, err := a.retriever.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sections: %w", err)
	}

	sections, _ := splitResults(results)
	return sections, nil
}

// blocks until background audit writes finish
func (a *Agent) Wait() {
	a.audits.Wait()
}

func (a *Agent) cached(ctx context.Context, query string) *Answer {
	if a.cache == nil {
		return nil
	}

	entry, err := a.cache.Get(ctx, query)
	if err != nil {
		logger.Warn("answer cache lookup failed", "error", err)
		return nil
	}

	if entry == nil {
		return nil
	}

	return &Answer{
		Text:      entry.Text,
		Sections:  entry.Sections,
		Distances: entry.Distances,
		Cached:    true,
	}
}

func (a *Agent) store(ctx context.Context, query string, answer *Answer) {
	if a.cache == nil {
		return
	}

	err := a.cache.Set(ctx, query, cache.Entry{
		Text:      answer.Text,
		Sections:  answer.Sections,
		Distances: answer.Distances,
	})
	if err != nil {
		logger.Warn("failed to cache answer", "error", err)
	}
}

// fire-and-forget audit write, detached from the request's cancellation
func (a *Agent) record(ctx context.Context, query, prompt string, answer *Answer) {
	if a.audit == nil {
		return
	}

	rec := storage.AnswerRecord{
		ID:               uuid.NewString(),
		Question:         query,
		Prompt:           prompt,
		SimilarDistances: answer.Distances,
		SimilarSections:  strings.Join(answer.Sections, " "),
		Answer:           answer.Text,
		CreatedAt:        time.Now().UTC(),
	}

	if rec.SimilarDistances == nil {
		rec.SimilarDistances = []float32{}
	}

	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.auditTimeout)

	a.audits.Add(1)
	go func() {
		defer a.audits.Done()
		defer cancel()

		if err := a.audit.InsertAnswer(auditCtx, rec); err != nil {
			logger.ErrorErr(err, "failed to write answer audit record", "answer_id", rec.ID)
		}
	}()
}

func splitResults(results []storage.QueryResult) ([]string, []float32) {
	if len(results) == 0 {
		return nil, nil
	}

	sections := make([]string, len(results))
	distances := make([]float32, len(results))

	for i, r := range results {
		sections[i] = r.Content
		distances[i] = r.Distance
	}

	return sections, distances
}
