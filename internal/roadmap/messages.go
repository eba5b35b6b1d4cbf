package roadmap

import "roadmap-agent/internal/domain"

func systemMessage(instruction string) domain.ChatMessage {
	return domain.ChatMessage{Role: domain.RoleSystem, Content: instruction}
}

func userMessage(content string) domain.ChatMessage {
	return domain.ChatMessage{Role: domain.RoleUser, Content: content}
}

// buildMessages assembles the two-message prompt: the system instruction,
// then one user message holding the original message plus as much context as
// the window allows.
//
// Context arrives most-recent-first. Each accepted entry is prepended to the
// buffer, so the final body reads oldest context first and the current
// message last. The walk stops at the first entry that would push the body
// past MessageLimitChars, keeping the window a contiguous prefix of the
// supplied context. Lengths are measured in bytes. The message itself is
// never truncated.
func (s *Service) buildMessages(message string, context []string, system domain.ChatMessage) []domain.ChatMessage {
	buffer := message
	length := len(message)

	take := s.cfg.ContextLength
	if take > len(context) {
		take = len(context)
	}
	for _, entry := range context[:take] {
		if length+len(entry) > s.cfg.MessageLimitChars {
			break
		}
		length += len(entry)
		buffer = entry + buffer
	}

	return []domain.ChatMessage{system, userMessage(buffer)}
}
