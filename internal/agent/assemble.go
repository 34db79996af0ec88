package agent

import (
	"github.com/seenimoa/stockpredictor/internal/agent/prompts"
	"github.com/seenimoa/stockpredictor/internal/llm"
)

// Assemble builds the outbound message list: one system message (static
// prompt plus the augmentation), every prior user and assistant turn in
// order, then message. Turns with any other role are skipped; the rest are
// never reordered or truncated.
func Assemble(aug AugmentedContext, history []Turn, message string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.SystemMessage(prompts.Section(aug.Segment())))
	for _, t := range history {
		if !t.Valid() {
			continue
		}
		msgs = append(msgs, t.Message())
	}
	return append(msgs, llm.UserMessage(message))
}
