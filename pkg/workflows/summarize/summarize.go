// Package summarize is an example workflow: it splits a text into chunks,
// summarizes each chunk naively and refines the merged summary in a loop
// until it fits within a length budget.
//
// The nodes are ordinary state transforms; nothing here is engine-specific.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/dsl"
	"github.com/aretw0/stepflow/pkg/registry"
)

// Node names.
const (
	NodeSplitText         = "split_text"
	NodeGenerateSummaries = "generate_summaries"
	NodeMergeSummaries    = "merge_summaries"
	NodeRefineSummary     = "refine_summary"

	ToolLength = "length"
)

// Defaults applied when the state does not carry the corresponding key.
const (
	DefaultMaxChunkSize     = 200
	DefaultMaxSummaryLength = 200
	fallbackSummaryLength   = 50
)

// Register installs the summarization nodes and the length tool into reg.
func Register(reg *registry.Registry) {
	reg.Register(ToolLength, LengthTool)
	reg.RegisterNode(NodeSplitText, registry.NodeFunc(SplitText))
	reg.RegisterNode(NodeGenerateSummaries, registry.NodeFunc(GenerateSummaries))
	reg.RegisterNode(NodeMergeSummaries, registry.NodeFunc(MergeSummaries))
	reg.RegisterNode(NodeRefineSummary, registry.NodeFunc(RefineSummary))
}

// Graph returns the canonical pipeline: split, summarize, merge, then refine
// while summary_length exceeds DefaultMaxSummaryLength.
func Graph() *dsl.Definition {
	return GraphWithLimit(DefaultMaxSummaryLength)
}

// GraphWithLimit is Graph with a custom refinement threshold. The limit must
// match the max_summary_length carried by the run state, otherwise
// refine_summary never brings summary_length below the edge condition.
func GraphWithLimit(maxSummaryLength int) *dsl.Definition {
	b := dsl.New(NodeSplitText)
	b.Node(NodeSplitText).Next(NodeGenerateSummaries)
	b.Node(NodeGenerateSummaries).Next(NodeMergeSummaries)
	b.Node(NodeMergeSummaries).Next(NodeRefineSummary)
	b.Node(NodeRefineSummary).
		When("summary_length", domain.OpGreater, maxSummaryLength).
		Then(NodeRefineSummary).
		Else("")
	def := b.Build()
	def.InitialState = domain.State{
		"max_chunk_size":     DefaultMaxChunkSize,
		"max_summary_length": maxSummaryLength,
	}
	return def
}

// LengthTool returns the number of characters in args["text"].
func LengthTool(ctx context.Context, args map[string]any) (any, error) {
	text, ok := args["text"].(string)
	if !ok {
		return nil, fmt.Errorf("length: argument 'text' must be a string, got %T", args["text"])
	}
	return utf8.RuneCountInString(text), nil
}

// SplitText packs the words of "text" into chunks of at most "max_chunk_size"
// characters without splitting words, and stores them under "chunks".
// A single word longer than the limit becomes its own chunk.
func SplitText(ctx context.Context, state domain.State) (domain.State, error) {
	text := stringValue(state, "text")
	maxSize := intValue(state, "max_chunk_size", DefaultMaxChunkSize)

	var chunks []string
	var current []string
	currentLen := 0

	for _, w := range strings.Fields(text) {
		candidate := currentLen + utf8.RuneCountInString(w)
		if len(current) > 0 {
			candidate++ // joining space
		}
		if candidate <= maxSize {
			current = append(current, w)
			currentLen = candidate
			continue
		}
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
		}
		current = []string{w}
		currentLen = utf8.RuneCountInString(w)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	state["chunks"] = toAnySlice(chunks)
	return state, nil
}

// GenerateSummaries keeps the first sentence of every chunk, or its first 50
// characters when it has no sentence, and stores them under "summaries".
func GenerateSummaries(ctx context.Context, state domain.State) (domain.State, error) {
	chunks := stringSlice(state, "chunks")
	summaries := make([]string, 0, len(chunks))

	for _, chunk := range chunks {
		summary := ""
		for _, part := range strings.Split(chunk, ".") {
			if s := strings.TrimSpace(part); s != "" {
				summary = s
				break
			}
		}
		if summary == "" {
			summary = truncate(chunk, fallbackSummaryLength)
		}
		summaries = append(summaries, summary)
	}

	state["summaries"] = toAnySlice(summaries)
	return state, nil
}

// MergeSummaries joins "summaries" into "merged_summary" and "summary".
func MergeSummaries(ctx context.Context, state domain.State) (domain.State, error) {
	merged := strings.Join(stringSlice(state, "summaries"), " ")
	state["merged_summary"] = merged
	state["summary"] = merged
	state["summary_length"] = utf8.RuneCountInString(merged)
	return state, nil
}

// RefineSummary shortens "summary" to "max_summary_length" characters,
// preferring to cut after the last period when it lies past half the limit.
// A negative limit is treated as zero.
func RefineSummary(ctx context.Context, state domain.State) (domain.State, error) {
	summary := stringValue(state, "summary")
	maxLen := max(intValue(state, "max_summary_length", DefaultMaxSummaryLength), 0)

	runes := []rune(summary)
	if len(runes) <= maxLen {
		state["summary_length"] = len(runes)
		return state, nil
	}

	truncated := runes[:maxLen]
	for i := len(truncated) - 1; i >= 0; i-- {
		if truncated[i] == '.' {
			if float64(i) > float64(maxLen)*0.5 {
				truncated = truncated[:i+1]
			}
			break
		}
	}

	summary = strings.TrimSpace(string(truncated))
	state["summary"] = summary
	state["summary_length"] = utf8.RuneCountInString(summary)
	return state, nil
}

func stringValue(state domain.State, key string) string {
	if s, ok := state[key].(string); ok {
		return s
	}
	return ""
}

// intValue reads a numeric setting. JSON inputs arrive as float64.
func intValue(state domain.State, key string, def int) int {
	switch v := state[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// stringSlice accepts both []string (set by Go callers) and []any (decoded JSON).
func stringSlice(state domain.State, key string) []string {
	switch v := state[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
