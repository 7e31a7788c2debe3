package chat

// Message is one conversation entry in backend wire form. Role is a
// free string because backends disagree on the labels they accept for
// injected tool output ("tool", "system", "user").
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History is the ordered conversation record for one session. It is not
// safe for concurrent use on its own; the owning Session serializes
// access.
type History struct {
	messages []Message
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds one entry.
func (h *History) Append(role, content string) {
	h.messages = append(h.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the entries in order.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.messages)
}

// Clear removes all entries.
func (h *History) Clear() {
	h.messages = nil
}
