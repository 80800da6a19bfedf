package pipeline

import (
	"fmt"

	"github.com/Iron-Ham/sift/internal/mailbox"
)

const debaterInstructions = `You are a compelling debater with a knack for making persuasive arguments. You argue the side you are given, whatever your own view, and you support every point with reasoning and concrete examples. Write in Markdown without a preamble.`

const judgeInstructions = `You are a fair judge with a reputation for weighing arguments without bias. You decide a debate purely on the arguments presented, not on your own opinion of the motion. Write in Markdown: state which side was more convincing, then explain why.`

func proposeInput(motion string) string {
	return fmt.Sprintf("Motion: %s\n\nYou are proposing the motion. Write a clear, concise argument FOR the motion that is as convincing as possible.", motion)
}

func opposeInput(motion string) string {
	return fmt.Sprintf("Motion: %s\n\nYou are opposing the motion. Write a clear, concise argument AGAINST the motion that is as convincing as possible.", motion)
}

func decideInput(motion string, record []mailbox.Message) string {
	arguments := mailbox.FormatFiltered(record, mailbox.FilterOptions{
		Types: []mailbox.MessageType{mailbox.MessageProposal, mailbox.MessageOpposition},
	})
	return fmt.Sprintf("Motion: %s\n\nThe debaters made the following arguments:\n\n%s\n\nDecide which side is more convincing based purely on these arguments.", motion, arguments)
}
