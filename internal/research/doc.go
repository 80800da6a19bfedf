// Package research implements the deep research flow: assess the query and
// optionally ask follow-up questions, plan a bounded number of web searches,
// run them concurrently with a summary per search, and write a Markdown
// report that can be exported with YAML front-matter.
//
// # Flow
//
// [Manager.Run] drives a session and streams [Update] values to the caller.
// A session that needs clarification stops after the assessment and
// returns the [ClarificationPlan]; the caller collects answers and calls Run
// again with a [Clarification] and the same trace ID.
//
//	mgr := research.NewManager(model, searcher, research.WithBus(bus))
//	out, err := mgr.Run(ctx, research.Request{Query: q, Searches: "3"}, emit)
//	if out.Clarification != nil {
//	    // ask the questions, then
//	    out, err = mgr.Run(ctx, research.Request{
//	        Query:         q,
//	        Searches:      "3",
//	        TraceID:       out.TraceID,
//	        Clarification: &research.Clarification{Answers: answers, Plan: out.Clarification},
//	    }, emit)
//	}
package research
