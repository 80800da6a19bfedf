// Package event provides a synchronous pub-sub bus that lets the research
// flow, the debate pipeline, the terminal UI and the logger observe each
// other without direct dependencies.
//
// # Main Types
//
//   - [Event]: interface implemented by every event (EventType and Timestamp)
//   - [Bus]: thread-safe dispatcher
//   - [Handler]: func(Event)
//
// # Event Categories
//
// Research:
//   - [ResearchStartedEvent]: a session started or resumed after clarification
//   - [ResearchPhaseEvent]: clarify, plan, search or write began
//   - [ClarificationNeededEvent]: the flow paused for user answers
//   - [SearchCompletedEvent]: one planned search finished
//   - [ResearchCompletedEvent]: the session ended
//
// Debate:
//   - [DebateStartedEvent], [DebateTurnEvent], [DebateResolvedEvent]
//   - [DebatePipelinePhaseEvent], [DebatePipelineStoppedEvent]
//
// # Usage
//
//	bus := event.NewBus()
//	bus.Subscribe(event.TypeSearchCompleted, func(e event.Event) {
//	    done := e.(event.SearchCompletedEvent)
//	    fmt.Printf("%d/%d\n", done.Completed, done.Total)
//	})
//	bus.SubscribeAll(func(e event.Event) {
//	    logger.Debug("event", "type", e.EventType())
//	})
//
// Handlers run synchronously on the publishing goroutine. A panicking
// handler is recovered and logged; remaining handlers still run.
package event
