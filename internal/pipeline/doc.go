// Package pipeline runs a structured debate: a FOR debater proposes, an
// optional AGAINST debater opposes, and a judge decides.
//
// Phases run strictly in order: propose → oppose → decide → complete. Each
// phase is one model call whose output is recorded in a [debate.Session]
// and written as a Markdown artifact (propose.md, oppose.md, decide.md).
// Phase transitions publish events on the shared [event.Bus].
//
// # Usage
//
//	r := pipeline.NewRunner(model,
//	    pipeline.WithArtifactDir("output"),
//	    pipeline.WithCallLog(llm.NewCallLog()),
//	)
//	result, err := r.Run(ctx, "Cats make better pets than dogs", func(u pipeline.Update) {
//	    fmt.Println(u.Text)
//	})
//
// The judge only sees the motion and the recorded arguments, never the
// debaters' prompts.
package pipeline
