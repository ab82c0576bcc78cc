package mcq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"mcqengine/internal/llm"
)

const glossaryPromptPrefix = "Extract all technical terms"

func mcqJSON(statement, answer string) string {
	b, _ := json.Marshal(map[string]any{
		"reasoning": "The excerpt states it directly.",
		"statement": statement,
		"options":   []string{"a) one", "b) two", "c) three", "d) four", "e) five"},
		"answer":    answer,
	})
	return string(b)
}

// recorder is a stub model that keeps every prompt it sees.
type recorder struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (r *recorder) Generate(ctx context.Context, prompt string) (string, error) {
	r.mu.Lock()
	r.prompts = append(r.prompts, prompt)
	r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return r.respond(prompt)
}

func (r *recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.prompts)
}

func (r *recorder) Prompts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.prompts...)
}

// genStub answers glossary prompts with glossary and every other prompt with mcq.
func genStub(glossary string, mcq func(prompt string) string) *recorder {
	return &recorder{respond: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, glossaryPromptPrefix) {
			return glossary, nil
		}
		return mcq(prompt), nil
	}}
}

func constant(out string) llm.Func {
	return func(context.Context, string) (string, error) { return out, nil }
}

// prose builds text of exactly n characters from varied words with no line noise.
func prose(n int) string {
	words := []string{"enzymes", "lower", "the", "activation", "energy", "of", "biochemical", "reactions", "inside", "living", "cells"}
	var sb strings.Builder
	for i := 0; sb.Len() < n; i++ {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, words[i%len(words)])
	}
	return strings.TrimSpace(sb.String()[:n])
}
