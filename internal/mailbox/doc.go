// Package mailbox persists debate turns so every participant, and the
// judge in particular, reads the same record of what was said.
//
// Messages are stored under the debate directory as append-only JSONL,
// one inbox per recipient plus a shared broadcast inbox:
//
//	{dir}/mailbox/
//	    broadcast/index.jsonl   -- motion and verdict
//	    {recipient}/index.jsonl -- arguments addressed to one participant
//
// # Main Types
//
//   - [Message]: sender, recipient, type, body and metadata
//   - [MessageType]: motion, proposal, opposition, verdict
//   - [Store]: file-backed storage with serialized appends
//   - [Mailbox]: facade used by the debate session
//
// # Usage
//
//	mb := mailbox.NewMailbox(dir)
//	mb.Send(mailbox.Message{From: "debater-for", To: "judge", Type: mailbox.MessageProposal, Body: arg})
//	msgs, _ := mb.Receive("judge")
//	prompt := mailbox.FormatFiltered(msgs, mailbox.FilterOptions{
//	    Types: []mailbox.MessageType{mailbox.MessageProposal, mailbox.MessageOpposition},
//	})
//
// [Store] and [Mailbox] are safe for concurrent use within one process.
package mailbox
