package types

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is one entry of a conversation with the assistant.
type ChatMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ChatResponse is the assistant's answer to POST /api/chat/.
type ChatResponse struct {
	Answer        string `json:"answer"`
	AgenticAction string `json:"agentic_action,omitempty"`
}
