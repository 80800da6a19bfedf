// Package debate implements a three-seat debate over a motion: a FOR
// debater proposes, an optional AGAINST debater opposes, and a judge
// decides.
//
// # Session Lifecycle
//
// A debate session progresses through three states:
//
//   - Pending: the motion is set but no argument has been made
//   - Active: the FOR argument is recorded; the AGAINST argument may follow
//   - Resolved: the judge has delivered a verdict
//
// Turns taken out of sequence fail with errors.ErrOutOfOrder.
//
// # Usage
//
//	mb := mailbox.NewMailbox(stateDir)
//	sess, err := debate.NewSession("", mb, bus, "Cats are better pets than dogs")
//
//	sess.Propose("Cats are independent...")
//	sess.Oppose("Dogs are loyal...")
//	sess.Decide("The FOR side wins because...")
//
// The package also holds the helpers used to present a debate:
// [SplitIntoChunks] and [SimulateConversation] turn two arguments into an
// alternating exchange, [CleanOutput] strips terminal noise, and
// [ArtifactStore] manages propose.md, oppose.md and decide.md.
//
// # Thread Safety
//
// Session is safe for concurrent use. All state mutations are protected
// by an internal mutex.
package debate
