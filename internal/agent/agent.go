// Package agent implements the prediction pipeline: resolve a ticker from
// the user's text, augment the system prompt with a live quote or a
// fallback notice, assemble the conversation and request a completion.
package agent

import (
	"sync"

	"github.com/seenimoa/stockpredictor/internal/llm"
)

// ── Turn ──

// Turn is one prior message of the dialogue.
type Turn struct {
	Role llm.Role `json:"role"`
	Text string   `json:"content"`
}

// UserTurn creates a user turn.
func UserTurn(text string) Turn { return Turn{Role: llm.RoleUser, Text: text} }

// AssistantTurn creates an assistant turn.
func AssistantTurn(text string) Turn { return Turn{Role: llm.RoleAssistant, Text: text} }

// Valid reports whether the turn is a user or assistant message. Any other
// role would add instructions beside the single system message.
func (t Turn) Valid() bool {
	return t.Role == llm.RoleUser || t.Role == llm.RoleAssistant
}

// Message converts the turn to an outbound chat message.
func (t Turn) Message() llm.Message {
	return llm.Message{Role: t.Role, Content: t.Text}
}

// ── Conversation ──

// DefaultConversationSize is the number of turns a Conversation keeps.
const DefaultConversationSize = 50

// Conversation keeps dialogue history for an interactive session with a
// sliding window. Callers pass Snapshot to the Predictor, so concurrent
// requests never share the underlying slice.
type Conversation struct {
	mu       sync.RWMutex
	turns    []Turn
	maxTurns int
}

// NewConversation creates a conversation with the given window size.
func NewConversation(maxTurns int) *Conversation {
	if maxTurns <= 0 {
		maxTurns = DefaultConversationSize
	}
	return &Conversation{
		maxTurns: maxTurns,
		turns:    make([]Turn, 0, maxTurns),
	}
}

// Add appends turns, dropping the oldest ones beyond the window.
func (c *Conversation) Add(turns ...Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, turns...)
	if over := len(c.turns) - c.maxTurns; over > 0 {
		c.turns = append(c.turns[:0:0], c.turns[over:]...)
	}
}

// Record stores a completed exchange. Failed replies are not stored so an
// error sentence never becomes model context.
func (c *Conversation) Record(message string, res Result) {
	if res.Failure != llm.FailureNone {
		return
	}
	c.Add(UserTurn(message), AssistantTurn(res.Text))
}

// Snapshot returns a copy of the history.
func (c *Conversation) Snapshot() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of stored turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Clear drops all history.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = c.turns[:0]
}
