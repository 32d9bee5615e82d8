package main

import "time"

// Role identifies who authored a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatSession is the conversation metadata shown in the header and sidebar
type ChatSession struct {
	ID           string
	Topic        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

// ChatMessage is a single turn of a conversation
type ChatMessage struct {
	ID          string
	Role        Role
	Content     string
	CreatedAt   time.Time
	IsStreaming bool
	ModelID     string
}

// IsUser reports whether the message was written by the user
func (m ChatMessage) IsUser() bool {
	return m.Role == RoleUser
}
