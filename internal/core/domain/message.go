package domain

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged exchange turn at the chat boundary.
// The core does not retain messages beyond the current request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
