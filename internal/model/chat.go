package model

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole
	Content string
}

// ChatSession holds the recent conversation turns for one user.
type ChatSession struct {
	Messages []ChatMessage
}
