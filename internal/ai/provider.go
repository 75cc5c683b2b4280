package ai

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Provider sends a conversation to a model and returns the assistant text.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// splitSystem separates system messages (joined) from the rest, for APIs that
// take the system prompt out of band.
func splitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
