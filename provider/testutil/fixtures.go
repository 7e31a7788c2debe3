package testutil

import "aide/chat"

// TestMessages returns a sample conversation for testing.
func TestMessages() []chat.Message {
	return []chat.Message{
		{Role: "user", Content: "Hello, how are you?"},
		{Role: "assistant", Content: "I'm doing well, thank you!"},
		{Role: "user", Content: "Can you help me with a task?"},
	}
}

// SingleUserMessage returns a single user message for simple tests.
func SingleUserMessage(content string) []chat.Message {
	return []chat.Message{
		{Role: "user", Content: content},
	}
}

// EmptyMessages returns an empty message slice for edge case testing.
func EmptyMessages() []chat.Message {
	return []chat.Message{}
}

// SystemMessage returns a system message for testing.
func SystemMessage(content string) chat.Message {
	return chat.Message{
		Role:    "system",
		Content: content,
	}
}
