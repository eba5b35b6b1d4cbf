package domain

// Role values understood by the completion service.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape shared by the
// roadmap core and the LLM integration.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionChoice is one candidate reply returned by the completion service.
// Content is nil when the service answered the choice without textual content.
type CompletionChoice struct {
	Role    string
	Content *string
}
