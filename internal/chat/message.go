package chat

import "time"

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one transcript entry. At most one message is streaming per
// in-flight send; it stops streaming once the send settles.
type Message struct {
	ID          string    `json:"id,omitempty"`
	Sender      Sender    `json:"sender"`
	Text        string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	IsError     bool      `json:"isError,omitempty"`
	IsStreaming bool      `json:"isStreaming,omitempty"`
}

// Fixed assistant texts.
const (
	WelcomeText = "Welcome to your study session! I'm here to help you with your studies. " +
		"You can ask me questions about the topics you're learning, request explanations, " +
		"or get help with practice problems."
	ThinkingText       = "Thinking..."
	TransportErrorText = "Sorry, I encountered an error processing your request. Please try again later."
	NoResponseText     = "No response received from AI assistant"
	IncompleteText     = "Error receiving complete response"
)
