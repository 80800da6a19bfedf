// Package tui renders research and debate runs in the terminal.
//
// Both flows stream progress as [Entry] values. [App] runs a flow in the
// background and shows its entries under a spinner; when stdout is not a
// terminal the same entries are printed with [RenderEntries] instead.
// [RunClarify] asks the research follow-up questions one at a time.
package tui
