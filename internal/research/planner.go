package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/sift/internal/llm"
)

// WebSearchItem is one planned search.
type WebSearchItem struct {
	Reason string `json:"reason"`
	Query  string `json:"query"`
}

// WebSearchPlan is the planner's output.
type WebSearchPlan struct {
	Searches           []WebSearchItem `json:"searches"`
	DeviationReasoning string          `json:"deviation_reasoning"`
}

// fallbackPlan searches the raw query once.
func fallbackPlan(query string) *WebSearchPlan {
	return &WebSearchPlan{
		Searches: []WebSearchItem{{Query: query, Reason: "The planner returned no searches; searching the query directly."}},
	}
}

func plannerInstructions(n int) string {
	return fmt.Sprintf(`You are an expert research strategist. Given a query, possibly with extra context from clarification questions, create a search plan.

The user suggested %[1]d searches. Choose the number that best fits the query, but you must produce between %[2]d and %[3]d searches inclusive, and never more than %[1]d.
- Simple queries (definitions, single facts): 1-2 searches
- Moderate queries (overviews, comparing two or three concepts): 2-3 searches
- Complex queries (multi-faceted topics, several stakeholders or time frames): 3-5 searches

Always explain the number you chose in deviation_reasoning, even when it matches the suggestion.

When clarification context is present, focus on the aspects the user cares about and match the audience, scope, time frame and perspectives they asked for.

Make the searches complement each other: mix overview and detailed searches, recent developments, authoritative sources, data and real-world examples. Do not add redundant searches just to reach a number.

Respond with a single JSON object and nothing else:
{"searches": [{"reason": "...", "query": "..."}], "deviation_reasoning": "..."}`, n, MinSearches, MaxSearches)
}

// Planner turns a query into a WebSearchPlan.
type Planner struct {
	model llm.Provider
}

// NewPlanner creates a Planner backed by model.
func NewPlanner(model llm.Provider) *Planner {
	return &Planner{model: model}
}

// Plan asks for up to n searches. Items with a blank query are dropped and
// the plan is truncated to n. The returned plan may be empty.
func (p *Planner) Plan(ctx context.Context, enhancedQuery string, n int) (*WebSearchPlan, error) {
	n = ClampSearchCount(n)

	resp, err := p.model.Generate(llm.WithCallName(ctx, "planner"), plannerInstructions(n), enhancedQuery)
	if err != nil {
		return nil, err
	}

	var plan WebSearchPlan
	if err := llm.DecodeJSON(resp.Text, &plan); err != nil {
		return nil, err
	}

	kept := plan.Searches[:0]
	for _, item := range plan.Searches {
		item.Query = strings.TrimSpace(item.Query)
		if item.Query == "" {
			continue
		}
		item.Reason = strings.TrimSpace(item.Reason)
		kept = append(kept, item)
	}
	if len(kept) > n {
		kept = kept[:n]
	}
	plan.Searches = kept
	return &plan, nil
}
